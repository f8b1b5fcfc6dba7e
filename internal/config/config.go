package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"smart_ems/internal/service"
	"smart_ems/internal/telemetry"

	"github.com/spf13/viper"
)

// Config is the whole application configuration.
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Simulation struct {
		Interval time.Duration       `mapstructure:"interval"`
		Seed     int64               `mapstructure:"seed"`
		Fleet    telemetry.FleetSpec `mapstructure:"fleet"`
	} `mapstructure:"simulation"`
	History struct {
		Size int `mapstructure:"size"`
	} `mapstructure:"history"`
	Alerts struct {
		Retention       time.Duration `mapstructure:"retention"`
		CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	} `mapstructure:"alerts"`
	DB struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"db"`
	MQTT struct {
		Enabled     bool   `mapstructure:"enabled"`
		Broker      string `mapstructure:"broker"`
		ClientID    string `mapstructure:"client_id"`
		TopicPrefix string `mapstructure:"topic_prefix"`
		Ingest      bool   `mapstructure:"ingest"`
	} `mapstructure:"mqtt"`
	SNS struct {
		Enabled     bool   `mapstructure:"enabled"`
		Region      string `mapstructure:"region"`
		TopicArn    string `mapstructure:"topic_arn"`
		MinSeverity string `mapstructure:"min_severity"`
	} `mapstructure:"sns"`
}

const envPrefix = "EMS"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("simulation.interval", service.DefaultInterval)
	v.SetDefault("simulation.seed", 42)
	v.SetDefault("simulation.fleet.solar_panels", telemetry.DefaultFleetSpec.SolarPanels)
	v.SetDefault("simulation.fleet.batteries", telemetry.DefaultFleetSpec.Batteries)
	v.SetDefault("simulation.fleet.inverters", telemetry.DefaultFleetSpec.Inverters)
	v.SetDefault("simulation.fleet.ev_chargers", telemetry.DefaultFleetSpec.EVChargers)
	v.SetDefault("simulation.fleet.grid_connections", telemetry.DefaultFleetSpec.GridConnections)

	v.SetDefault("history.size", service.DefaultHistorySize)
	v.SetDefault("alerts.retention", service.DefaultRetention)
	v.SetDefault("alerts.cleanup_interval", service.DefaultCleanupInterval)
	v.SetDefault("db.path", ":memory:")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "smart-ems")
	v.SetDefault("mqtt.topic_prefix", "ems")
	v.SetDefault("mqtt.ingest", false)

	v.SetDefault("sns.enabled", false)
	v.SetDefault("sns.region", "us-east-1")
	v.SetDefault("sns.min_severity", "critical")
}

// Load reads config.yml from the given directories (a missing file is not an
// error), applies EMS_* environment overrides and validates the result.
func Load(paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot start with.
func (c Config) Validate() error {
	switch {
	case c.Simulation.Interval <= 0:
		return fmt.Errorf("simulation.interval must be positive, got %s", c.Simulation.Interval)
	case c.History.Size <= 0:
		return fmt.Errorf("history.size must be positive, got %d", c.History.Size)
	case c.Alerts.Retention <= 0:
		return fmt.Errorf("alerts.retention must be positive, got %s", c.Alerts.Retention)
	case c.MQTT.Ingest && !c.MQTT.Enabled:
		return errors.New("mqtt.ingest requires mqtt.enabled")
	case c.SNS.Enabled && c.SNS.TopicArn == "":
		return errors.New("sns.topic_arn is required when sns is enabled")
	}
	f := c.Simulation.Fleet
	for name, n := range map[string]int{
		"solar_panels": f.SolarPanels, "batteries": f.Batteries, "inverters": f.Inverters,
		"ev_chargers": f.EVChargers, "grid_connections": f.GridConnections,
	} {
		if n < 0 {
			return fmt.Errorf("simulation.fleet.%s must not be negative", name)
		}
	}
	return nil
}
