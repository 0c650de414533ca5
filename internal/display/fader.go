package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Fader walks a sink toward a target level one percent at a time
type Fader struct {
	sink   Sink
	step   time.Duration
	logger *slog.Logger
}

func NewFader(sink Sink, step time.Duration, logger *slog.Logger) *Fader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fader{sink: sink, step: step, logger: logger}
}

// FadeTo moves the display to target and returns the level it was left at.
// When the current level cannot be read the target is set in one step.
func (f *Fader) FadeTo(ctx context.Context, target int) (int, error) {
	target = clampPercent(target)

	current, err := f.sink.Brightness(ctx)
	if err != nil {
		if !errors.Is(err, ErrLevelUnknown) {
			f.logger.Warn("Failed to read display brightness, setting directly", "error", err)
		}
		if err := f.sink.SetBrightness(ctx, target); err != nil {
			return 0, fmt.Errorf("set brightness %d: %w", target, err)
		}
		return target, nil
	}

	current = clampPercent(current)
	if current == target {
		return current, nil
	}

	direction := 1
	if target < current {
		direction = -1
	}

	f.logger.Debug("Fading display", "from", current, "to", target)

	for level := current + direction; ; level += direction {
		if err := f.sink.SetBrightness(ctx, level); err != nil {
			return current, fmt.Errorf("set brightness %d: %w", level, err)
		}
		current = level
		if level == target {
			return current, nil
		}

		if f.step > 0 {
			timer := time.NewTimer(f.step)
			select {
			case <-ctx.Done():
				timer.Stop()
				return current, ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return current, err
		}
	}
}
