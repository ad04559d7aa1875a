package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mqttPublisher sends every reading as JSON to one topic.
type mqttPublisher struct {
	client mqtt.Client
	topic  string
	log    *slog.Logger
}

func newMQTTPublisher(broker string, port uint16, clientID, topic string, logger *slog.Logger) *mqttPublisher {
	p := &mqttPublisher{topic: topic, log: logger}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", broker, port))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("mqtt connected", "broker", broker, "port", port)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	p.client = mqtt.NewClient(opts)
	return p
}

// Connect starts connecting. With ConnectRetry the client keeps trying in
// the background, so a broker that is down at startup is not fatal.
func (p *mqttPublisher) Connect() {
	p.client.Connect()
}

func (p *mqttPublisher) Publish(r SensorReading) error {
	if !p.client.IsConnectionOpen() {
		return fmt.Errorf("mqtt client not connected")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	token := p.client.Publish(p.topic, 1, false, data)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish timeout for topic %s", p.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish reading: %w", err)
	}
	p.log.Debug("published reading", "topic", p.topic)
	return nil
}

func (p *mqttPublisher) Disconnect() {
	p.client.Disconnect(250)
	p.log.Info("mqtt disconnected")
}
