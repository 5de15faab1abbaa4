package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"eskytrack/internal/core/model"
)

const publishTimeout = 5 * time.Second

type MQTTConfig struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
}

// MQTTPublisher publishes each position as JSON on <prefix>/<deviceId>.
type MQTTPublisher struct {
	client mqtt.Client
	cfg    MQTTConfig
	logger *zap.Logger
}

func NewMQTTPublisher(cfg MQTTConfig, logger *zap.Logger) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("MQTT connection lost", zap.Error(err))
		})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	logger.Info("Connected to MQTT broker", zap.String("broker", cfg.Broker))
	return newMQTTPublisher(client, cfg, logger), nil
}

func newMQTTPublisher(client mqtt.Client, cfg MQTTConfig, logger *zap.Logger) *MQTTPublisher {
	return &MQTTPublisher{client: client, cfg: cfg, logger: logger}
}

func (p *MQTTPublisher) Topic(deviceID string) string {
	return p.cfg.TopicPrefix + "/" + deviceID
}

func (p *MQTTPublisher) Publish(position *model.Position) error {
	payload, err := json.Marshal(position)
	if err != nil {
		return err
	}

	token := p.client.Publish(p.Topic(position.DeviceID), p.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", p.Topic(position.DeviceID))
	}
	return token.Error()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
