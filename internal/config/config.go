package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig `yaml:"server"`
	Log     LogConfig    `yaml:"log"`
	MongoDB MongoConfig  `yaml:"mongodb"`
	Redis   RedisConfig  `yaml:"redis"`
	MQTT    MQTTConfig   `yaml:"mqtt"`
	Auth    AuthConfig   `yaml:"auth"`
}

type ServerConfig struct {
	TCPAddr     string        `yaml:"tcp_addr"`
	HTTPAddr    string        `yaml:"http_addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// MongoConfig selects the repository backend. An empty URI keeps
// devices and positions in memory.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	URL         string        `yaml:"url"`
	RegistryTTL time.Duration `yaml:"registry_ttl"`
}

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads the YAML file at path (skipped when path is empty), applies
// environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.TCPAddr = getEnv("TCP_ADDR", c.Server.TCPAddr)
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.MongoDB.URI = getEnv("MONGODB_URI", c.MongoDB.URI)
	c.MongoDB.Database = getEnv("MONGODB_DATABASE", c.MongoDB.Database)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
}

func (c *Config) applyDefaults() {
	if c.Server.TCPAddr == "" {
		c.Server.TCPAddr = "0.0.0.0:5023"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "0.0.0.0:8000"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 5 * time.Minute
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.MongoDB.Database == "" {
		c.MongoDB.Database = "tracking"
	}
	if c.Redis.RegistryTTL <= 0 {
		c.Redis.RegistryTTL = 10 * time.Minute
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "eskytrack-server"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "eskytrack/positions"
	}
}

func (c *Config) Validate() error {
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if strings.HasSuffix(c.MQTT.TopicPrefix, "/") {
		return errors.New("mqtt.topic_prefix must not end with '/'")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
