package display

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// BacklightSink drives a Linux backlight through sysfs, e.g.
// /sys/class/backlight/intel_backlight
type BacklightSink struct {
	dir string
}

func NewBacklightSink(dir string) *BacklightSink {
	return &BacklightSink{dir: dir}
}

func (b *BacklightSink) Brightness(ctx context.Context) (int, error) {
	maxRaw, err := b.readInt("max_brightness")
	if err != nil {
		return 0, err
	}
	raw, err := b.readInt("brightness")
	if err != nil {
		return 0, err
	}
	return rawToPercent(raw, maxRaw), nil
}

func (b *BacklightSink) SetBrightness(ctx context.Context, level int) error {
	maxRaw, err := b.readInt("max_brightness")
	if err != nil {
		return err
	}
	raw := percentToRaw(level, maxRaw)
	path := filepath.Join(b.dir, "brightness")
	if err := os.WriteFile(path, []byte(strconv.Itoa(raw)), 0o644); err != nil {
		return fmt.Errorf("write backlight: %w", err)
	}
	return nil
}

func (b *BacklightSink) readInt(name string) (int, error) {
	path := filepath.Join(b.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read backlight %s: %w", name, err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse backlight %s: %w", name, err)
	}
	return v, nil
}

// rawToPercent rounds so that percentToRaw followed by rawToPercent is stable
func rawToPercent(raw, maxRaw int) int {
	if maxRaw <= 0 {
		return 0
	}
	if raw > maxRaw {
		raw = maxRaw
	}
	if raw < 0 {
		raw = 0
	}
	return int(math.Round(float64(raw) / float64(maxRaw) * 100))
}

func percentToRaw(level, maxRaw int) int {
	return int(math.Round(float64(clampPercent(level)) * float64(maxRaw) / 100))
}
