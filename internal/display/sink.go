// Package display drives the physical display toward a target brightness.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/saaga0h/daylight-platform/pkg/config"
	"github.com/saaga0h/daylight-platform/pkg/mqtt"
)

// ErrLevelUnknown is returned by Brightness when the sink cannot tell the current level
var ErrLevelUnknown = errors.New("current brightness unknown")

// Sink reads and sets display brightness as a percentage
type Sink interface {
	Brightness(ctx context.Context) (int, error)
	SetBrightness(ctx context.Context, level int) error
}

// NewSink returns the sink selected by cfg.DisplaySink
func NewSink(cfg *config.Config, mqttClient mqtt.Client, logger *slog.Logger) (Sink, error) {
	switch cfg.DisplaySink {
	case config.SinkMQTT:
		if mqttClient == nil {
			return nil, errors.New("mqtt display sink requires an MQTT client")
		}
		return NewMQTTSink(mqttClient, cfg.ServiceName, cfg.DisplayDevice, logger), nil
	case config.SinkBacklight:
		return NewBacklightSink(cfg.BacklightPath), nil
	default:
		return nil, fmt.Errorf("unknown display sink: %s", cfg.DisplaySink)
	}
}

func clampPercent(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
