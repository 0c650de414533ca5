// Package astronomy supplies sunrise, solar noon and sunset for a date at
// the configured location.
package astronomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saaga0h/daylight-platform/internal/span"
	"github.com/saaga0h/daylight-platform/pkg/config"
)

// ErrNoDaylight is returned when the sun does not rise or set on the date
var ErrNoDaylight = errors.New("no sunrise or sunset on this date")

// Times holds the solar events for one local calendar day
type Times struct {
	Date      time.Time      `json:"date"`
	Sunrise   span.ClockTime `json:"sunrise"`
	SolarNoon span.ClockTime `json:"solar_noon"`
	Sunset    span.ClockTime `json:"sunset"`
	Source    string         `json:"source"`
}

// Provider fetches solar times for a date
type Provider interface {
	Fetch(ctx context.Context, date time.Time) (*Times, error)
}

// NewProvider builds the provider named by cfg.AstronomyProvider. The
// ipgeolocation service falls back to local suncalc when the request fails.
func NewProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	local := NewSunCalcProvider(cfg.Latitude, cfg.Longitude, loc)

	switch cfg.AstronomyProvider {
	case config.ProviderIPGeolocation:
		if cfg.AstronomyAPIKey == "" {
			return nil, fmt.Errorf("astronomy API key is required for %s", config.ProviderIPGeolocation)
		}
		remote := NewIPGeolocationClient(cfg.AstronomyURL, cfg.AstronomyAPIKey, cfg.Latitude, cfg.Longitude)
		return NewFallbackProvider(logger, remote, local), nil
	case config.ProviderSunCalc:
		return local, nil
	case config.ProviderSunrise:
		return NewSunriseProvider(cfg.Latitude, cfg.Longitude, loc), nil
	default:
		return nil, fmt.Errorf("unknown astronomy provider: %s", cfg.AstronomyProvider)
	}
}

// FallbackProvider asks each provider in turn and returns the first success
type FallbackProvider struct {
	providers []Provider
	logger    *slog.Logger
}

// NewFallbackProvider chains providers in priority order
func NewFallbackProvider(logger *slog.Logger, providers ...Provider) *FallbackProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackProvider{providers: providers, logger: logger}
}

func (f *FallbackProvider) Fetch(ctx context.Context, date time.Time) (*Times, error) {
	var errs []error
	for i, p := range f.providers {
		times, err := p.Fetch(ctx, date)
		if err == nil {
			return times, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		f.logger.Warn("Astronomy provider failed",
			"provider_index", i,
			"date", date.Format(time.DateOnly),
			"error", err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no astronomy providers configured")
	}
	return nil, fmt.Errorf("all astronomy providers failed: %w", errors.Join(errs...))
}

// timesFromEvents converts absolute rise, noon and set instants to local clock times
func timesFromEvents(date time.Time, rise, noon, set time.Time, loc *time.Location, source string) (*Times, error) {
	if rise.IsZero() || set.IsZero() || !set.After(rise) {
		return nil, fmt.Errorf("%s %s: %w", source, date.Format(time.DateOnly), ErrNoDaylight)
	}
	return &Times{
		Date:      date,
		Sunrise:   span.ClockTimeOf(rise.In(loc)),
		SolarNoon: span.ClockTimeOf(noon.In(loc)),
		Sunset:    span.ClockTimeOf(set.In(loc)),
		Source:    source,
	}, nil
}
