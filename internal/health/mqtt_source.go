package health

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTSource subscribes to an MQTT topic carrying health feed updates and
// applies every delivery to the store.
type MQTTSource struct {
	BrokerURL string
	Topic     string
	ClientID  string
	Store     *Store
}

// Run connects to the broker, subscribes, and blocks until ctx is cancelled.
func (m *MQTTSource) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(m.BrokerURL).
		SetClientID(m.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("health: mqtt connect %s: %w", m.BrokerURL, token.Error())
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		if err := m.Store.ApplyRaw(msg.Payload()); err != nil {
			m.Store.log.Warn("mqtt health update rejected", "topic", msg.Topic(), "err", err)
		}
	}
	if token := client.Subscribe(m.Topic, 0, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("health: mqtt subscribe %s: %w", m.Topic, token.Error())
	}

	m.Store.log.Info("subscribed to mqtt health feed", "broker", m.BrokerURL, "topic", m.Topic)
	<-ctx.Done()
	return nil
}
