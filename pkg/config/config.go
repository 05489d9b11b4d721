package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"
)

type MQTTConfig struct {
	Server   string `json:"server"`
	Username string `json:"username"`
	Password string `json:"password"`
	ClientID string `json:"client_id"`
	Topic    string `json:"topic"`
}

type OutputConfig struct {
	Type string      `json:"type"`
	MQTT *MQTTConfig `json:"mqtt,omitempty"`
}

type Config struct {
	Device         string         `json:"device"`
	Baud           int            `json:"baud"`
	DelaySec       float64        `json:"delay_sec"`
	DurationSec    float64        `json:"duration_sec"`
	ReadTimeoutSec float64        `json:"read_timeout_sec"`
	SaveCSV        bool           `json:"save_csv"`
	Experiment     string         `json:"experiment"`
	OutputDir      string         `json:"output_dir"`
	Outputs        []OutputConfig `json:"outputs"`
}

func DefaultConfig() Config {
	return Config{
		Baud:           9600,
		DelaySec:       0,
		DurationSec:    30,
		ReadTimeoutSec: 1.0,
		SaveCSV:        false,
		OutputDir:      ".",
		Outputs:        []OutputConfig{{Type: "console"}},
	}
}

// LoadFromFlags loads configuration from a JSON file (optional) and
// flags. Flags override values present in the JSON file.
func LoadFromFlags() (Config, error) {
	cfgPath := flag.String("config", "", "Path to JSON config file")
	flagDevice := flag.String("device", "", "Serial device path (e.g. /dev/ttyACM0)")
	flagBaud := flag.Int("baud", -1, "Serial baud rate")
	flagDelay := flag.Float64("delay", math.NaN(), "Seconds to wait before capture starts")
	flagDuration := flag.Float64("duration", math.NaN(), "Capture duration in seconds")
	flagTimeout := flag.Float64("timeout", math.NaN(), "Serial read timeout (seconds)")
	flagCSV := flag.Bool("csv", false, "Save raw and clean CSV logs")
	flagExperiment := flag.String("experiment", "", "Experiment name used in output paths")
	flagOutputDir := flag.String("output-dir", "", "Directory for CSV logs")
	flagOutputs := flag.String("outputs", "", "Comma-separated outputs (console,mqtt)")
	flagMQTTServer := flag.String("mqtt-server", "", "MQTT server (tcp://host:port)")
	flagMQTTUser := flag.String("mqtt-user", "", "MQTT username")
	flagMQTTPass := flag.String("mqtt-pass", "", "MQTT password")
	flagClientID := flag.String("mqtt-client-id", "", "MQTT client id")
	flagTopic := flag.String("mqtt-topic", "", "MQTT state topic")

	flag.Parse()

	cfg := DefaultConfig()

	if *cfgPath != "" {
		b, err := os.ReadFile(*cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if *flagDevice != "" {
		cfg.Device = *flagDevice
	}
	if *flagBaud != -1 {
		cfg.Baud = *flagBaud
	}
	if !math.IsNaN(*flagDelay) {
		cfg.DelaySec = *flagDelay
	}
	if !math.IsNaN(*flagDuration) {
		cfg.DurationSec = *flagDuration
	}
	if !math.IsNaN(*flagTimeout) {
		cfg.ReadTimeoutSec = *flagTimeout
	}
	if *flagCSV {
		cfg.SaveCSV = true
	}
	if *flagExperiment != "" {
		cfg.Experiment = *flagExperiment
	}
	if *flagOutputDir != "" {
		cfg.OutputDir = *flagOutputDir
	}
	if *flagOutputs != "" {
		parts := parseCSV(*flagOutputs)
		outs := make([]OutputConfig, 0, len(parts))
		for _, p := range parts {
			outs = append(outs, OutputConfig{Type: p})
		}
		cfg.Outputs = outs
	}
	// map mqtt flags onto mqtt outputs (create one if missing)
	if *flagMQTTServer != "" || *flagMQTTUser != "" || *flagMQTTPass != "" || *flagClientID != "" || *flagTopic != "" {
		applied := false
		for i := range cfg.Outputs {
			if strings.ToLower(cfg.Outputs[i].Type) == "mqtt" {
				if cfg.Outputs[i].MQTT == nil {
					cfg.Outputs[i].MQTT = &MQTTConfig{}
				}
				applyMQTTFlags(cfg.Outputs[i].MQTT, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID, *flagTopic)
				applied = true
			}
		}
		if !applied {
			out := OutputConfig{Type: "mqtt", MQTT: &MQTTConfig{}}
			applyMQTTFlags(out.MQTT, *flagMQTTServer, *flagMQTTUser, *flagMQTTPass, *flagClientID, *flagTopic)
			cfg.Outputs = append(cfg.Outputs, out)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the session configuration surface: non-negative delay
// and duration, a positive read timeout, and a usable device.
func (c Config) Validate() error {
	if c.Device == "" {
		return errors.New("device must be set")
	}
	if c.Baud <= 0 {
		return errors.New("baud must be > 0")
	}
	if c.DelaySec < 0 {
		return errors.New("delay must be >= 0")
	}
	if c.DurationSec < 0 {
		return errors.New("duration must be >= 0")
	}
	if c.ReadTimeoutSec <= 0 {
		return errors.New("timeout must be > 0")
	}
	return nil
}

func (c Config) Delay() time.Duration {
	return time.Duration(c.DelaySec * float64(time.Second))
}

func (c Config) Duration() time.Duration {
	return time.Duration(c.DurationSec * float64(time.Second))
}

func (c Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec * float64(time.Second))
}

func applyMQTTFlags(m *MQTTConfig, server, user, pass, clientID, topic string) {
	if server != "" {
		m.Server = server
	}
	if user != "" {
		m.Username = user
	}
	if pass != "" {
		m.Password = pass
	}
	if clientID != "" {
		m.ClientID = clientID
	}
	if topic != "" {
		m.Topic = topic
	}
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
