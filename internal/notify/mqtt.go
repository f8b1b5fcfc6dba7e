package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"smart_ems/internal/logger"
	"smart_ems/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultTopicPrefix  = "ems"
	defaultTokenTimeout = 5 * time.Second
)

// mqttClient is the part of mqtt.Client used here.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// DialMQTT connects to the broker and blocks until the session is up.
func DialMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(defaultTokenTimeout)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	return client, nil
}

func topicPrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return defaultTopicPrefix
	}
	return p
}

func waitToken(t mqtt.Token, timeout time.Duration) error {
	if !t.WaitTimeout(timeout) {
		return fmt.Errorf("mqtt: timed out after %s", timeout)
	}
	return t.Error()
}

// MQTTPublisher publishes readings to <prefix>/readings/<deviceId> and alerts
// to <prefix>/alerts/<severity>.
type MQTTPublisher struct {
	client  mqttClient
	prefix  string
	timeout time.Duration
	log     *logger.Logger
}

func NewMQTTPublisher(client mqttClient, prefix string, log *logger.Logger) *MQTTPublisher {
	return &MQTTPublisher{client: client, prefix: topicPrefix(prefix), timeout: defaultTokenTimeout, log: log}
}

func (p *MQTTPublisher) Publish(ctx context.Context, res models.TickResult) error {
	for _, r := range res.Readings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.send(fmt.Sprintf("%s/readings/%s", p.prefix, r.DeviceID), 0, r); err != nil {
			return err
		}
	}
	for _, a := range res.Alerts {
		if err := p.send(fmt.Sprintf("%s/alerts/%s", p.prefix, a.Severity), 1, a); err != nil {
			return err
		}
	}
	return nil
}

func (p *MQTTPublisher) send(topic string, qos byte, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", topic, err)
	}
	if err := waitToken(p.client.Publish(topic, qos, false, payload), p.timeout); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// DeviceLookup resolves registered devices by id.
type DeviceLookup interface {
	Lookup(id string) (models.Device, bool)
}

// DefaultIngestBuffer bounds readings waiting for the next tick.
const DefaultIngestBuffer = 1000

// MQTTSource collects readings published to <prefix>/ingest and hands them to
// the pipeline on the next tick, in arrival order. Readings for unknown
// devices are dropped. When the buffer is full the oldest reading is dropped.
type MQTTSource struct {
	client  mqttClient
	topic   string
	devices DeviceLookup
	limit   int
	log     *logger.Logger

	mu      sync.Mutex
	pending []models.Reading
}

func NewMQTTSource(client mqttClient, prefix string, devices DeviceLookup, log *logger.Logger) *MQTTSource {
	return &MQTTSource{
		client:  client,
		topic:   topicPrefix(prefix) + "/ingest",
		devices: devices,
		limit:   DefaultIngestBuffer,
		log:     log,
	}
}

// Start subscribes to the ingest topic.
func (s *MQTTSource) Start() error {
	if err := waitToken(s.client.Subscribe(s.topic, 1, s.handle), defaultTokenTimeout); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, err)
	}
	s.log.Infow("mqtt_ingest_subscribed", "topic", s.topic)
	return nil
}

// Stop unsubscribes from the ingest topic.
func (s *MQTTSource) Stop() error {
	return waitToken(s.client.Unsubscribe(s.topic), defaultTokenTimeout)
}

func (s *MQTTSource) handle(_ mqtt.Client, msg mqtt.Message) {
	var r models.Reading
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		s.log.Warnw("mqtt_ingest_bad_payload", "topic", msg.Topic(), "err", err)
		return
	}
	d, ok := s.devices.Lookup(r.DeviceID)
	if !ok {
		s.log.Warnw("mqtt_ingest_unknown_device", "device_id", r.DeviceID)
		return
	}
	if r.DeviceClass == "" {
		r.DeviceClass = d.Class
	}
	if r.Location == "" {
		r.Location = d.Location
	}
	if r.Metrics == nil {
		r.Metrics = models.Metrics{}
	}

	s.mu.Lock()
	s.pending = append(s.pending, r)
	if over := len(s.pending) - s.limit; over > 0 {
		s.pending = append(s.pending[:0:0], s.pending[over:]...)
	}
	s.mu.Unlock()
}

// Read drains the buffered readings. Readings without a timestamp get now.
func (s *MQTTSource) Read(_ context.Context, now time.Time) ([]models.Reading, error) {
	s.mu.Lock()
	out := s.pending
	s.pending = nil
	s.mu.Unlock()

	for i := range out {
		if out[i].Timestamp.IsZero() {
			out[i].Timestamp = now
		}
		if out[i].HealthStatus == "" && out[i].Metrics.Has(models.MetricHealthScore) {
			out[i].HealthStatus = models.StatusFromHealth(out[i].Metrics.Float(models.MetricHealthScore, 100))
		}
	}
	return out, nil
}
