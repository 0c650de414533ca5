package daylight

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/saaga0h/daylight-platform/internal/astronomy"
	"github.com/saaga0h/daylight-platform/internal/span"
	"github.com/saaga0h/daylight-platform/pkg/redis"
)

// CacheTTL keeps yesterday's table around long enough to survive a restart
// shortly after midnight
const CacheTTL = 48 * time.Hour

// CachedTable is the last table built for a device, with the inputs it was built from
type CachedTable struct {
	Date          string
	MinBrightness int
	MaxBrightness int
	LastRay       bool
	Times         astronomy.Times
	Table         *span.Table
}

// ValidFor reports whether the entry can stand in for a fresh build
func (c *CachedTable) ValidFor(date string, minBrightness, maxBrightness int, lastRay bool) bool {
	return c.Date == date &&
		c.MinBrightness == minBrightness &&
		c.MaxBrightness == maxBrightness &&
		c.LastRay == lastRay &&
		c.Table.Len() >= span.MinTableSize
}

// SpanCache stores one CachedTable per device in a Redis hash
type SpanCache struct {
	redis redis.Client
}

func NewSpanCache(client redis.Client) *SpanCache {
	return &SpanCache{redis: client}
}

// Save replaces the device's entry and refreshes its TTL
func (c *SpanCache) Save(ctx context.Context, device string, entry *CachedTable) error {
	spans, err := json.Marshal(entry.Table)
	if err != nil {
		return fmt.Errorf("failed to encode span table: %w", err)
	}

	key := redis.SpanTableKey(device)
	fields := map[string]interface{}{
		"date":           entry.Date,
		"min_brightness": entry.MinBrightness,
		"max_brightness": entry.MaxBrightness,
		"last_ray":       strconv.FormatBool(entry.LastRay),
		"sunrise":        entry.Times.Sunrise.String(),
		"solar_noon":     entry.Times.SolarNoon.String(),
		"sunset":         entry.Times.Sunset.String(),
		"source":         entry.Times.Source,
		"spans":          string(spans),
	}

	if err := c.redis.HSet(ctx, key, fields); err != nil {
		return fmt.Errorf("failed to store span table: %w", err)
	}
	if err := c.redis.Expire(ctx, key, CacheTTL); err != nil {
		return fmt.Errorf("failed to set span table TTL: %w", err)
	}
	return nil
}

// Load returns the device's entry. A missing entry wraps redis.ErrNotFound.
func (c *SpanCache) Load(ctx context.Context, device string) (*CachedTable, error) {
	fields, err := c.redis.HGetAll(ctx, redis.SpanTableKey(device))
	if err != nil {
		return nil, err
	}

	entry := &CachedTable{Date: fields["date"], Table: &span.Table{}}
	entry.Times.Source = fields["source"]

	if entry.MinBrightness, err = strconv.Atoi(fields["min_brightness"]); err != nil {
		return nil, fmt.Errorf("cached min_brightness: %w", err)
	}
	if entry.MaxBrightness, err = strconv.Atoi(fields["max_brightness"]); err != nil {
		return nil, fmt.Errorf("cached max_brightness: %w", err)
	}
	// Entries written before last_ray was stored were built without it
	if raw, ok := fields["last_ray"]; ok {
		if entry.LastRay, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("cached last_ray: %w", err)
		}
	}

	clocks := []struct {
		field string
		dst   *span.ClockTime
	}{
		{"sunrise", &entry.Times.Sunrise},
		{"solar_noon", &entry.Times.SolarNoon},
		{"sunset", &entry.Times.Sunset},
	}
	for _, ck := range clocks {
		if *ck.dst, err = span.ParseClockTime(fields[ck.field]); err != nil {
			return nil, fmt.Errorf("cached %s: %w", ck.field, err)
		}
	}

	if entry.Times.Date, err = time.Parse(time.DateOnly, entry.Date); err != nil {
		return nil, fmt.Errorf("cached date: %w", err)
	}
	if err := json.Unmarshal([]byte(fields["spans"]), entry.Table); err != nil {
		return nil, err
	}

	return entry, nil
}
