package display

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saaga0h/daylight-platform/pkg/mqtt"
)

// MQTTSink commands a display over MQTT and tracks the level it reports
type MQTTSink struct {
	client mqtt.Client
	source string
	device string
	logger *slog.Logger

	mu    sync.RWMutex
	level int
	known bool
}

type displayCommand struct {
	Brightness int    `json:"brightness"`
	Source     string `json:"source"`
	Timestamp  string `json:"timestamp"`
}

type displayContext struct {
	Brightness *int `json:"brightness"`
}

func NewMQTTSink(client mqtt.Client, source, device string, logger *slog.Logger) *MQTTSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MQTTSink{client: client, source: source, device: device, logger: logger}
}

// Subscribe starts listening for the display's reported level. Call after Connect.
func (s *MQTTSink) Subscribe() error {
	topic := mqtt.DisplayContextTopic(s.device)
	if err := s.client.Subscribe(topic, 0, s.handleContext); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	s.logger.Info("Subscribed to display context", "topic", topic)
	return nil
}

func (s *MQTTSink) handleContext(msg mqtt.Message) {
	var ctxMsg displayContext
	if err := json.Unmarshal(msg.Payload(), &ctxMsg); err != nil {
		s.logger.Warn("Failed to parse display context", "topic", msg.Topic(), "error", err)
		return
	}
	if ctxMsg.Brightness == nil {
		return
	}

	s.mu.Lock()
	s.level = clampPercent(*ctxMsg.Brightness)
	s.known = true
	s.mu.Unlock()

	s.logger.Debug("Display reported brightness", "device", s.device, "brightness", *ctxMsg.Brightness)
}

func (s *MQTTSink) Brightness(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.known {
		return 0, ErrLevelUnknown
	}
	return s.level, nil
}

// SetBrightness publishes a command and assumes the display follows it
func (s *MQTTSink) SetBrightness(ctx context.Context, level int) error {
	payload, err := json.Marshal(displayCommand{
		Brightness: clampPercent(level),
		Source:     s.source,
		Timestamp:  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal display command: %w", err)
	}

	topic := mqtt.DisplayCommandTopic(s.device)
	if err := s.client.Publish(topic, 0, false, payload); err != nil {
		return err
	}

	s.mu.Lock()
	s.level = clampPercent(level)
	s.known = true
	s.mu.Unlock()
	return nil
}
