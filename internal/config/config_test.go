package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5023", cfg.Server.TCPAddr)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "tracking", cfg.MongoDB.Database)
	assert.Empty(t, cfg.MongoDB.URI)
	assert.Equal(t, "eskytrack/positions", cfg.MQTT.TopicPrefix)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  tcp_addr: ":6000"
  read_timeout: 30s
log:
  level: debug
mongodb:
  uri: mongodb://localhost:27017
  database: fleet
redis:
  url: redis://localhost:6379/0
  registry_ttl: 1m
mqtt:
  broker: tcp://localhost:1883
  qos: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6000", cfg.Server.TCPAddr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "fleet", cfg.MongoDB.Database)
	assert.Equal(t, time.Minute, cfg.Redis.RegistryTTL)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "mongodb:\n  uri: mongodb://file:27017\n")
	t.Setenv("MONGODB_URI", " mongodb://env:27017 ")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://env:27017", cfg.MongoDB.URI)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "mqtt:\n  qos: 3\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not a map"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
