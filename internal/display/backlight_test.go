package display

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBacklight(t *testing.T, raw, maxRaw string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "brightness"), []byte(raw), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(maxRaw), 0o644))
	return dir
}

func TestBacklightSink(t *testing.T) {
	dir := fakeBacklight(t, "9600\n", "19200\n")
	sink := NewBacklightSink(dir)
	ctx := context.Background()

	level, err := sink.Brightness(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, level)

	require.NoError(t, sink.SetBrightness(ctx, 25))
	raw, err := os.ReadFile(filepath.Join(dir, "brightness"))
	require.NoError(t, err)
	assert.Equal(t, "4800", string(raw))

	level, err = sink.Brightness(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, level)
}

func TestBacklightSink_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewBacklightSink(filepath.Join(t.TempDir(), "missing")).Brightness(ctx)
	assert.Error(t, err)

	_, err = NewBacklightSink(fakeBacklight(t, "bright", "255")).Brightness(ctx)
	assert.Error(t, err)
}

func TestPercentConversionRoundTrips(t *testing.T) {
	for _, maxRaw := range []int{7, 255, 937, 19200} {
		for level := 0; level <= 100; level++ {
			raw := percentToRaw(level, maxRaw)
			assert.LessOrEqual(t, raw, maxRaw)
			if maxRaw >= 100 {
				assert.Equal(t, level, rawToPercent(raw, maxRaw), "max %d level %d", maxRaw, level)
			}
		}
	}
	assert.Equal(t, 0, rawToPercent(5, 0))
	assert.Equal(t, 100, rawToPercent(300, 255))
}
