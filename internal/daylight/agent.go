// Package daylight runs the brightness schedule: it keeps today's span
// table and fades the display to the span that applies now.
package daylight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/saaga0h/daylight-platform/internal/astronomy"
	"github.com/saaga0h/daylight-platform/internal/display"
	"github.com/saaga0h/daylight-platform/internal/span"
	"github.com/saaga0h/daylight-platform/pkg/config"
	"github.com/saaga0h/daylight-platform/pkg/mqtt"
	"github.com/saaga0h/daylight-platform/pkg/redis"
)

// Status is a snapshot of the agent for the status endpoint
type Status struct {
	Device      string    `json:"device"`
	Date        string    `json:"date,omitempty"`
	Spans       int       `json:"spans"`
	Sunrise     string    `json:"sunrise,omitempty"`
	SolarNoon   string    `json:"solar_noon,omitempty"`
	Sunset      string    `json:"sunset,omitempty"`
	TimesSource string    `json:"times_source,omitempty"`
	FromCache   bool      `json:"from_cache"`
	CurrentSpan string    `json:"current_span,omitempty"`
	Brightness  *int      `json:"brightness,omitempty"`
	LastApplied time.Time `json:"last_applied"`

	OverrideUntil *time.Time `json:"override_until,omitempty"`
}

// command is accepted on automation/command/daylight/{device}
type command struct {
	Action     string `json:"action"`
	Minutes    int    `json:"minutes"`
	Brightness *int   `json:"brightness"`
}

// subscriber is implemented by sinks that listen for device reports
type subscriber interface {
	Subscribe() error
}

// Agent represents the daylight brightness agent
type Agent struct {
	mqtt     mqtt.Client
	cache    *SpanCache
	provider astronomy.Provider
	sink     display.Sink
	fader    *display.Fader
	history  HistoryRecorder
	override *Override
	cfg      *config.Config
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time

	// State management
	stateMux  sync.RWMutex
	table     *span.Table
	tableDate string
	times     *astronomy.Times
	fromCache bool
	applied   *span.Span
	appliedAt time.Time
	scheduled *scheduledFade

	// One fade drives the display at a time
	fadeMux sync.Mutex

	// Periodic loops, guarded by stateMux
	adjustTicker *time.Ticker
	dateTicker   *time.Ticker
	stopped      bool
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// scheduledFade is the in-flight fade started by Adjust
type scheduledFade struct {
	cancel context.CancelFunc
}

// Option customises an Agent
type Option func(*Agent)

// WithHistory records every applied level
func WithHistory(h HistoryRecorder) Option {
	return func(a *Agent) { a.history = h }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// NewAgent creates a new daylight agent
func NewAgent(mqttClient mqtt.Client, redisClient redis.Client, provider astronomy.Provider, sink display.Sink, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Agent, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &Agent{
		mqtt:     mqttClient,
		cache:    NewSpanCache(redisClient),
		provider: provider,
		sink:     sink,
		fader:    display.NewFader(sink, cfg.FadeStep(), logger),
		cfg:      cfg,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.override = NewOverride(a.now)
	return a, nil
}

// Start connects, loads today's table and runs the loops until ctx is cancelled
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("Starting daylight agent",
		"service_name", a.cfg.ServiceName,
		"device", a.cfg.DisplayDevice,
		"sink", a.cfg.DisplaySink,
		"adjust_interval_sec", a.cfg.AdjustIntervalSec,
		"date_check_interval_sec", a.cfg.DateCheckIntervalSec,
		"min_brightness", a.cfg.MinBrightness,
		"max_brightness", a.cfg.MaxBrightness)

	// Connect to MQTT broker
	if err := a.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	// Verify Redis connection
	if err := a.cache.redis.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	if s, ok := a.sink.(subscriber); ok {
		if err := s.Subscribe(); err != nil {
			return err
		}
	}

	commandTopic := mqtt.DaylightCommandTopic(a.cfg.DisplayDevice)
	if err := a.mqtt.Subscribe(commandTopic, 1, a.handleCommand); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", commandTopic, err)
	}
	a.logger.Info("Subscribed to daylight commands", "topic", commandTopic)

	if err := a.Refresh(ctx); err != nil {
		a.logger.Error("Failed to load span table, will retry on next date check", "error", err)
	}
	a.Adjust(ctx)

	a.startLoops(ctx)

	a.logger.Info("Daylight agent started and ready")

	// Block until context is cancelled
	<-ctx.Done()
	a.logger.Info("Daylight agent stopping")

	return nil
}

// Stop stops the loops and disconnects. Safe to call more than once.
func (a *Agent) Stop() error {
	var err error
	a.stopOnce.Do(func() {
		a.logger.Info("Stopping daylight agent")

		a.stateMux.Lock()
		a.stopped = true
		if a.adjustTicker != nil {
			a.adjustTicker.Stop()
		}
		if a.dateTicker != nil {
			a.dateTicker.Stop()
		}
		a.stateMux.Unlock()
		close(a.stopChan)

		a.mqtt.Disconnect()

		if closeErr := a.cache.redis.Close(); closeErr != nil {
			a.logger.Error("Error closing Redis connection", "error", closeErr)
			err = closeErr
		}

		a.logger.Info("Daylight agent stopped")
	})
	return err
}

func (a *Agent) startLoops(ctx context.Context) {
	a.stateMux.Lock()
	if a.stopped {
		a.stateMux.Unlock()
		return
	}
	adjustTicker := time.NewTicker(a.cfg.AdjustInterval())
	dateTicker := time.NewTicker(a.cfg.DateCheckInterval())
	a.adjustTicker = adjustTicker
	a.dateTicker = dateTicker
	a.stateMux.Unlock()

	go func() {
		a.logger.Info("Starting adjust loop", "interval_sec", a.cfg.AdjustIntervalSec)
		for {
			select {
			case <-adjustTicker.C:
				a.Adjust(ctx)
			case <-a.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		a.logger.Info("Starting date check loop", "interval_sec", a.cfg.DateCheckIntervalSec)
		for {
			select {
			case <-dateTicker.C:
				a.CheckDate(ctx)
			case <-a.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (a *Agent) today() (time.Time, string) {
	now := a.now().In(a.loc)
	return now, now.Format(time.DateOnly)
}

// CheckDate rebuilds the table when the local date has moved on
func (a *Agent) CheckDate(ctx context.Context) {
	_, date := a.today()

	a.stateMux.RLock()
	current := a.tableDate
	a.stateMux.RUnlock()

	if current == date {
		return
	}

	a.logger.Info("New day, refreshing span table", "previous_date", current, "date", date)
	if err := a.Refresh(ctx); err != nil {
		a.logger.Error("Failed to refresh span table, keeping previous table",
			"previous_date", current,
			"error", err)
	}
}

// Refresh installs a table for today, from the cache when it is still valid
// and otherwise from fresh astronomy data. On error the current table stays.
func (a *Agent) Refresh(ctx context.Context) error {
	now, date := a.today()
	device := a.cfg.DisplayDevice

	cached, err := a.cache.Load(ctx, device)
	switch {
	case err == nil && cached.ValidFor(date, a.cfg.MinBrightness, a.cfg.MaxBrightness, a.cfg.LastRay):
		a.install(date, &cached.Times, cached.Table, true)
		a.logger.Info("Restored span table from cache",
			"device", device,
			"date", date,
			"spans", cached.Table.Len())
		return nil
	case err == nil:
		a.logger.Debug("Cached span table is stale", "device", device, "cached_date", cached.Date)
	case !errors.Is(err, redis.ErrNotFound):
		a.logger.Warn("Failed to read cached span table", "device", device, "error", err)
	}

	times, err := a.provider.Fetch(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to fetch astronomy data: %w", err)
	}

	var opts []span.BuildOption
	if a.cfg.LastRay {
		opts = append(opts, span.WithLastRay())
	}
	table, err := span.Build(times.Sunrise, times.SolarNoon, a.cfg.MinBrightness, a.cfg.MaxBrightness, opts...)
	if err != nil {
		return fmt.Errorf("failed to build span table: %w", err)
	}

	a.install(date, times, table, false)
	a.logger.Info("Built span table",
		"device", device,
		"date", date,
		"sunrise", times.Sunrise,
		"solar_noon", times.SolarNoon,
		"sunset", times.Sunset,
		"source", times.Source,
		"spans", table.Len())

	entry := &CachedTable{
		Date:          date,
		MinBrightness: a.cfg.MinBrightness,
		MaxBrightness: a.cfg.MaxBrightness,
		LastRay:       a.cfg.LastRay,
		Times:         *times,
		Table:         table,
	}
	if err := a.cache.Save(ctx, device, entry); err != nil {
		a.logger.Warn("Failed to cache span table", "device", device, "error", err)
	}
	return nil
}

func (a *Agent) install(date string, times *astronomy.Times, table *span.Table, fromCache bool) {
	a.stateMux.Lock()
	defer a.stateMux.Unlock()
	a.tableDate = date
	a.times = times
	a.table = table
	a.fromCache = fromCache
}

// Adjust fades the display to the span that applies now. Failures are
// logged and the cycle is skipped. A manual override arriving mid-fade
// cancels it and takes the display.
func (a *Agent) Adjust(ctx context.Context) {
	a.stateMux.RLock()
	table := a.table
	a.stateMux.RUnlock()

	if a.override.Active() {
		a.logger.Debug("Manual override active, skipping adjustment")
		return
	}

	if table.Len() == 0 {
		a.logger.Warn("No span table available, skipping adjustment")
		return
	}

	now := a.now().In(a.loc)
	target, err := table.Lookup(span.ClockTimeOf(now))
	if err != nil {
		a.logger.Error("Failed to resolve current span", "error", err)
		return
	}

	fadeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	fade := &scheduledFade{cancel: cancel}
	a.stateMux.Lock()
	a.scheduled = fade
	a.stateMux.Unlock()
	defer func() {
		a.stateMux.Lock()
		if a.scheduled == fade {
			a.scheduled = nil
		}
		a.stateMux.Unlock()
	}()

	a.fadeMux.Lock()
	if a.override.Active() {
		a.fadeMux.Unlock()
		a.logger.Debug("Manual override set while waiting to fade, skipping adjustment")
		return
	}
	level, err := a.fader.FadeTo(fadeCtx, target.Brightness)
	a.fadeMux.Unlock()
	if err != nil {
		if errors.Is(err, context.Canceled) && a.override.Active() {
			a.logger.Info("Scheduled fade interrupted by manual override",
				"span", target.At,
				"reached", level)
			return
		}
		a.logger.Error("Failed to apply brightness",
			"span", target.At,
			"target", target.Brightness,
			"reached", level,
			"error", err)
		return
	}

	applied := span.Span{At: target.At, Brightness: level}
	a.stateMux.Lock()
	a.applied = &applied
	a.appliedAt = now
	a.stateMux.Unlock()

	a.logger.Info("Brightness adjusted",
		"device", a.cfg.DisplayDevice,
		"span", target.At,
		"brightness", level)

	if err := a.publishContext(applied, now); err != nil {
		a.logger.Error("Failed to publish daylight context", "error", err)
	}

	if a.history != nil {
		rec := HistoryRecord{
			Device:     a.cfg.DisplayDevice,
			AppliedAt:  now,
			SpanTime:   applied.At.String(),
			Brightness: applied.Brightness,
			Source:     a.cfg.ServiceName,
		}
		if err := a.history.Record(ctx, rec); err != nil {
			a.logger.Error("Failed to record brightness history", "error", err)
		}
	}
}

// handleCommand applies manual override and resume commands
func (a *Agent) handleCommand(msg mqtt.Message) {
	var cmd command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		a.logger.Error("Failed to parse daylight command", "topic", msg.Topic(), "error", err)
		return
	}

	ctx := context.Background()

	switch cmd.Action {
	case "override":
		duration := a.cfg.ManualOverride()
		if cmd.Minutes > 0 {
			duration = time.Duration(cmd.Minutes) * time.Minute
		}
		expiresAt := a.override.Set(duration)
		a.logger.Info("Manual override set",
			"device", a.cfg.DisplayDevice,
			"expires_at", expiresAt.Format(time.RFC3339))
		a.cancelScheduledFade()

		if cmd.Brightness != nil {
			a.fadeMux.Lock()
			level, err := a.fader.FadeTo(ctx, *cmd.Brightness)
			a.fadeMux.Unlock()
			if err != nil {
				a.logger.Error("Failed to apply override brightness", "target", *cmd.Brightness, "error", err)
				return
			}
			a.logger.Info("Override brightness applied", "brightness", level)
		}
	case "resume":
		if a.override.Clear() {
			a.logger.Info("Manual override cleared", "device", a.cfg.DisplayDevice)
		}
		a.Adjust(ctx)
	default:
		a.logger.Warn("Unknown daylight command", "action", cmd.Action)
	}
}

func (a *Agent) cancelScheduledFade() {
	a.stateMux.RLock()
	fade := a.scheduled
	a.stateMux.RUnlock()
	if fade != nil {
		fade.cancel()
	}
}

// publishContext announces the applied level on automation/context/daylight/{device}
func (a *Agent) publishContext(applied span.Span, now time.Time) error {
	a.stateMux.RLock()
	times := a.times
	a.stateMux.RUnlock()

	contextMsg := map[string]interface{}{
		"source":     a.cfg.ServiceName,
		"type":       "daylight",
		"device":     a.cfg.DisplayDevice,
		"span":       applied.At.String(),
		"brightness": applied.Brightness,
		"timestamp":  now.Format(time.RFC3339),
	}
	if times != nil {
		contextMsg["sunrise"] = times.Sunrise.String()
		contextMsg["solar_noon"] = times.SolarNoon.String()
		contextMsg["sunset"] = times.Sunset.String()
	}

	payload, err := json.Marshal(contextMsg)
	if err != nil {
		return fmt.Errorf("failed to marshal context message: %w", err)
	}

	topic := mqtt.DaylightContextTopic(a.cfg.DisplayDevice)
	if err := a.mqtt.Publish(topic, 0, true, payload); err != nil {
		return fmt.Errorf("failed to publish context to %s: %w", topic, err)
	}
	return nil
}

// Status returns a snapshot of the agent's state
func (a *Agent) Status() Status {
	a.stateMux.RLock()
	defer a.stateMux.RUnlock()

	st := Status{
		Device:    a.cfg.DisplayDevice,
		Date:      a.tableDate,
		Spans:     a.table.Len(),
		FromCache: a.fromCache,
	}
	if a.times != nil {
		st.Sunrise = a.times.Sunrise.String()
		st.SolarNoon = a.times.SolarNoon.String()
		st.Sunset = a.times.Sunset.String()
		st.TimesSource = a.times.Source
	}
	if a.applied != nil {
		level := a.applied.Brightness
		st.CurrentSpan = a.applied.At.String()
		st.Brightness = &level
		st.LastApplied = a.appliedAt
	}
	if until, ok := a.override.ExpiresAt(); ok {
		st.OverrideUntil = &until
	}
	return st
}

// StatusSnapshot satisfies health.StatusProvider
func (a *Agent) StatusSnapshot() interface{} {
	return a.Status()
}
