package span

import (
	"fmt"
	"time"
)

// MaxLevel is the brightest level a display accepts, in percent
const MaxLevel = 100

type buildOptions struct {
	lastRay bool
}

// BuildOption tweaks how Build lays out the table
type BuildOption func(*buildOptions)

// WithLastRay appends one extra entry at the minimum level one step after
// the last sample
func WithLastRay() BuildOption {
	return func(o *buildOptions) {
		o.lastRay = true
	}
}

// ValidateRange checks 0 <= min < max <= 100
func ValidateRange(minBrightness, maxBrightness int) error {
	if minBrightness < 0 || maxBrightness > MaxLevel {
		return fmt.Errorf("%w: brightness values must be between 0 and 100", ErrRange)
	}
	if minBrightness >= maxBrightness {
		return fmt.Errorf("%w: min brightness must be less than max brightness", ErrRange)
	}
	return nil
}

// Build samples a triangular brightness curve that starts at minBrightness at
// sunrise, peaks at maxBrightness at solar noon and falls back to
// minBrightness as far after noon as sunrise was before it.
//
// One sample is taken per brightness unit on each side of the peak, so the
// table holds 2*(max-min)+1 samples before samples landing on the same minute
// collapse (the later one wins).
//
// The table covers a single day. When solar noon is more than 12h after
// sunrise the descending samples run past midnight and are keyed by their
// wrapped time of day, replacing any early-morning keys, so the night
// resolves to a level on the way down rather than to minBrightness.
func Build(sunrise, solarNoon ClockTime, minBrightness, maxBrightness int, opts ...BuildOption) (*Table, error) {
	if err := ValidateRange(minBrightness, maxBrightness); err != nil {
		return nil, err
	}

	sunrise, solarNoon = sunrise.normalize(), solarNoon.normalize()
	if solarNoon <= sunrise {
		return nil, fmt.Errorf("%w: solar noon must be later than sunrise (sunrise %s, solar noon %s)",
			ErrRange, sunrise, solarNoon)
	}

	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	spansCount := maxBrightness - minBrightness
	step := stepDuration(sunrise, solarNoon, spansCount)

	samples := 2*spansCount + 1
	byTime := make(map[ClockTime]int, samples+1)
	for i := 0; i < samples; i++ {
		byTime[sampleTime(sunrise, step, i)] = triangle(i, spansCount, maxBrightness)
	}

	if o.lastRay {
		byTime[sampleTime(sunrise, step, samples)] = minBrightness
	}

	// On short days later samples share noon's minute; the peak always survives
	byTime[solarNoon] = maxBrightness

	if len(byTime) < MinTableSize {
		return fallbackTable(sunrise, solarNoon, minBrightness, maxBrightness), nil
	}

	return fromMap(byTime), nil
}

// stepDuration is the number of minutes one brightness unit takes on the
// way to noon. It is usually fractional.
func stepDuration(sunrise, solarNoon ClockTime, spansCount int) float64 {
	return solarNoon.Sub(sunrise).Minutes() / float64(spansCount)
}

// sampleTime truncates to the minute after rounding to the microsecond, so
// float noise such as 179.99999 minutes does not drop a whole minute
func sampleTime(sunrise ClockTime, step float64, i int) ClockTime {
	offset := time.Duration(step * float64(i) * float64(time.Minute)).Round(time.Microsecond)
	return sunrise.Add(offset)
}

// triangle rises one level per sample up to peak at i == spansCount and
// falls one level per sample after it
func triangle(i, spansCount, maxBrightness int) int {
	d := i - spansCount
	if d < 0 {
		d = -d
	}
	return maxBrightness - d
}

// fallbackTable covers days too short to hold three distinct samples.
// Sunset mirrors sunrise around solar noon, clamped to the last minute of
// the day and moved forward a minute at a time until it is a key of its own.
func fallbackTable(sunrise, solarNoon ClockTime, minBrightness, maxBrightness int) *Table {
	sunset := int(solarNoon) + int(solarNoon-sunrise)
	if sunset >= minutesPerDay {
		sunset = minutesPerDay - 1
	}
	end := ClockTime(sunset)
	for end == solarNoon || end == sunrise {
		end = (end + 1).normalize()
	}

	byTime := map[ClockTime]int{
		sunrise: minBrightness,
		end:     minBrightness,
	}
	byTime[solarNoon] = maxBrightness
	return fromMap(byTime)
}
