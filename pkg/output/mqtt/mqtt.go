package mqtt

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/hta-lab/fsr-capture/pkg/config"
	"github.com/hta-lab/fsr-capture/pkg/output"
	"github.com/hta-lab/fsr-capture/pkg/sensor"
)

const (
	DefaultServer     = "tcp://localhost:1883"
	DefaultStateTopic = "fsr/reading"
	clientIDPrefix    = "fsr-capture"
)

// MQTTOutput publishes each validated reading as JSON to a state topic,
// for anything watching the experiment live. Raw lines are not
// published.
type MQTTOutput struct {
	client     mqtt.Client
	stateTopic string
}

func NewMQTT(cfg config.MQTTConfig) (output.Output, error) {
	server := cfg.Server
	if server == "" {
		server = DefaultServer
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("%s-%s", clientIDPrefix, uuid.NewString()[:8])
	}
	opts := mqtt.NewClientOptions().AddBroker(server).SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultStateTopic
	}
	return &MQTTOutput{client: client, stateTopic: topic}, nil
}

func (m *MQTTOutput) AppendRaw(e sensor.RawEntry) error { return nil }

func (m *MQTTOutput) AppendClean(r sensor.Reading) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	token := m.client.Publish(m.stateTopic, 0, false, b)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt publish: %w", token.Error())
	}
	return nil
}

func (m *MQTTOutput) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}
