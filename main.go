package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/hta-lab/fsr-capture/pkg/capture"
	"github.com/hta-lab/fsr-capture/pkg/config"
	"github.com/hta-lab/fsr-capture/pkg/output"
	"github.com/hta-lab/fsr-capture/pkg/output/console"
	"github.com/hta-lab/fsr-capture/pkg/output/csvpair"
	"github.com/hta-lab/fsr-capture/pkg/output/mqtt"
	"github.com/hta-lab/fsr-capture/pkg/sensor"
)

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	src, err := sensor.OpenSerial(sensor.SerialConfig{Device: cfg.Device, BaudRate: cfg.Baud})
	if err != nil {
		log.Fatalf("serial: %v", err)
	}
	defer src.Close()
	log.Printf("opened %s @ %d baud", cfg.Device, cfg.Baud)

	outs, rawPath, cleanPath, err := initOutputs(cfg, time.Now())
	if err != nil {
		log.Fatalf("outputs: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := capture.NewSession(cfg.Delay(), cfg.Duration(), cfg.ReadTimeout())
	log.Printf("session %s: delay %s, duration %s", sess.ID, sess.Delay, sess.Duration)

	sum, err := capture.Run(ctx, sess, src, outs)
	switch {
	case err != nil:
		log.Printf("session failed after %.2fs: %v", sum.Elapsed, err)
	case sum.Cancelled:
		log.Printf("stopped early by operator after %.2fs", sum.Elapsed)
	}
	log.Printf("captured %d lines, %d valid samples in %.2fs", sum.RawLines, sum.CleanRows, sum.Elapsed)
	if rawPath != "" {
		fmt.Printf("raw log:   %s\n", rawPath)
		fmt.Printf("clean log: %s\n", cleanPath)
	}
	if err != nil {
		os.Exit(1)
	}
}

// initOutputs builds the output fan-out from the configuration: CSV
// files when -csv is enabled, plus any configured console or mqtt
// outputs. With file logging disabled no sinks are opened and the
// console is the only visibility.
func initOutputs(cfg config.Config, now time.Time) (output.Output, string, string, error) {
	var outs output.Multi
	var rawPath, cleanPath string

	if cfg.SaveCSV {
		var err error
		rawPath, cleanPath, err = buildOutputPaths(cfg, now)
		if err != nil {
			return nil, "", "", err
		}
		pair, err := csvpair.Open(rawPath, cleanPath)
		if err != nil {
			return nil, "", "", err
		}
		outs = append(outs, pair)
	}

	for _, o := range cfg.Outputs {
		switch strings.ToLower(o.Type) {
		case "console":
			outs = append(outs, console.NewConsole())
		case "mqtt":
			mc := config.MQTTConfig{}
			if o.MQTT != nil {
				mc = *o.MQTT
			}
			m, err := mqtt.NewMQTT(mc)
			if err != nil {
				return nil, "", "", err
			}
			outs = append(outs, m)
		default:
			return nil, "", "", fmt.Errorf("unknown output type %q", o.Type)
		}
	}

	return outs, rawPath, cleanPath, nil
}

// buildOutputPaths names the session's two log files. With an experiment
// name the files live under <output-dir>/<experiment>/ and carry the
// name as prefix; otherwise they land in the output dir with a generic
// prefix. Both carry the same session timestamp suffix.
func buildOutputPaths(cfg config.Config, now time.Time) (string, string, error) {
	ts := now.Format("20060102_150405")
	dir := cfg.OutputDir
	prefix := "fsr"
	if cfg.Experiment != "" {
		dir = filepath.Join(dir, cfg.Experiment)
		prefix = cfg.Experiment
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}
	raw := filepath.Join(dir, fmt.Sprintf("%s_raw_%s.csv", prefix, ts))
	clean := filepath.Join(dir, fmt.Sprintf("%s_clean_%s.csv", prefix, ts))
	return raw, clean, nil
}
