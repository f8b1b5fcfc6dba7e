package notify

import (
	"context"
	"fmt"
	"strings"

	"smart_ems/internal/logger"
	"smart_ems/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// snsAPI is the part of *sns.Client used here.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier sends newly raised alerts at or above a minimum severity to an
// SNS topic. Several alerts from one tick go out as a single message.
type SNSNotifier struct {
	client      snsAPI
	topicArn    string
	minSeverity models.Severity
	log         *logger.Logger
}

// NewSNSNotifier loads the default AWS credential chain for region.
func NewSNSNotifier(ctx context.Context, region, topicArn string, minSeverity models.Severity, log *logger.Logger) (*SNSNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return newSNSNotifier(sns.NewFromConfig(cfg), topicArn, minSeverity, log), nil
}

func newSNSNotifier(client snsAPI, topicArn string, minSeverity models.Severity, log *logger.Logger) *SNSNotifier {
	return &SNSNotifier{client: client, topicArn: topicArn, minSeverity: minSeverity, log: log}
}

func (n *SNSNotifier) Publish(ctx context.Context, res models.TickResult) error {
	var selected []models.Alert
	for _, a := range res.Alerts {
		if a.Severity >= n.minSeverity {
			selected = append(selected, a)
		}
	}
	switch len(selected) {
	case 0:
		return nil
	case 1:
		a := selected[0]
		return n.send(ctx, fmt.Sprintf("[%s] %s: %s", strings.ToUpper(a.Severity.String()), a.DeviceID, a.Title), alertBody(a))
	}

	var b strings.Builder
	b.WriteString("Multiple Alerts Detected:\n\n")
	for i, a := range selected {
		fmt.Fprintf(&b, "%d. [%s] %s %s (priority %d)\n", i+1, strings.ToUpper(a.Severity.String()), a.DeviceID, a.Title, a.PriorityScore)
	}
	return n.send(ctx, fmt.Sprintf("Energy fleet: %d alerts", len(selected)), b.String())
}

func (n *SNSNotifier) send(ctx context.Context, subject, message string) error {
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(truncate(subject, 100)),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	n.log.Infow("sns_alert_sent", "message_id", aws.ToString(out.MessageId), "subject", subject)
	return nil
}

func alertBody(a models.Alert) string {
	return fmt.Sprintf(
		"%s\n\n"+
			"Device: %s (%s)\n"+
			"Severity: %s\n"+
			"Priority: %d\n"+
			"Time: %s\n\n"+
			"Recommended action: %s\n"+
			"Impact: %s",
		a.Message,
		a.DeviceID, a.Component,
		a.Severity,
		a.PriorityScore,
		a.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		a.RecommendedAction,
		a.ImpactAssessment,
	)
}

// SNS subjects are limited to 100 characters.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
