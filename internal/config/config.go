package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HenryGill4/OpCentrix-sub007/pkg/auth"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/kafka"
	"github.com/HenryGill4/OpCentrix-sub007/pkg/mongodb"
)

// Config holds the full service configuration. Defaults come from Load,
// a YAML file pointed at by CONFIG_FILE overrides them, and environment
// variables override both.
type Config struct {
	ServerAddr string     `yaml:"serverAddr"`
	LogLevel   string     `yaml:"logLevel"`
	MongoDB    MongoDB    `yaml:"mongodb"`
	Kafka      Kafka      `yaml:"kafka"`
	Outbox     Outbox     `yaml:"outbox"`
	Auth       AuthConfig `yaml:"auth"`
}

// MongoDB holds connection settings for the document store
type MongoDB struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// Kafka holds broker settings for the event stream
type Kafka struct {
	Brokers  []string `yaml:"brokers"`
	ClientID string   `yaml:"clientId"`
}

// Outbox holds publisher tuning
type Outbox struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	BatchSize    int           `yaml:"batchSize"`
}

// AuthConfig maps operator IDs to granted capabilities. An empty map means
// every operator is granted everything, for deployments that authorize at
// the gateway.
type AuthConfig struct {
	Grants map[string][]string `yaml:"grants"`
}

// Load builds the configuration from defaults, the optional CONFIG_FILE
// YAML overlay, and environment variables, in that order.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: ":8012",
		LogLevel:   "info",
		MongoDB: MongoDB{
			URI:      "mongodb://localhost:27017",
			Database: "opcentrix_workflow",
		},
		Kafka: Kafka{
			Brokers:  []string{"localhost:9092"},
			ClientID: "workflow-service",
		},
		Outbox: Outbox{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ServerAddr = getEnv("SERVER_ADDR", cfg.ServerAddr)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.MongoDB.URI = getEnv("MONGODB_URI", cfg.MongoDB.URI)
	cfg.MongoDB.Database = getEnv("MONGODB_DATABASE", cfg.MongoDB.Database)
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = []string{brokers}
	}

	return cfg, nil
}

// MongoConfig converts the loaded settings into a driver config
func (c *Config) MongoConfig() *mongodb.Config {
	mc := mongodb.DefaultConfig()
	mc.URI = c.MongoDB.URI
	mc.Database = c.MongoDB.Database
	return mc
}

// KafkaConfig converts the loaded settings into a producer config
func (c *Config) KafkaConfig() *kafka.Config {
	kc := kafka.DefaultConfig()
	kc.Brokers = c.Kafka.Brokers
	kc.ClientID = c.Kafka.ClientID
	kc.ConsumerGroup = c.Kafka.ClientID
	return kc
}

// CapabilityChecker builds the operator authorization checker from the
// configured grants. No grants configured means allow-all.
func (c *Config) CapabilityChecker() auth.CapabilityChecker {
	if len(c.Auth.Grants) == 0 {
		return auth.AllowAll
	}
	grants := make(map[string][]auth.Capability, len(c.Auth.Grants))
	for operator, caps := range c.Auth.Grants {
		converted := make([]auth.Capability, 0, len(caps))
		for _, cap := range caps {
			converted = append(converted, auth.Capability(cap))
		}
		grants[operator] = converted
	}
	return auth.StaticChecker(grants)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
