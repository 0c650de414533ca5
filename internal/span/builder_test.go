package span

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ValidBoundsProduceCompleteTable(t *testing.T) {
	sunrise := MustParseClockTime("06:12")
	noon := MustParseClockTime("13:27")

	bounds := [][2]int{
		{0, 100}, {0, 1}, {99, 100}, {20, 80}, {10, 30}, {45, 55}, {0, 50}, {50, 100},
	}

	for _, b := range bounds {
		minB, maxB := b[0], b[1]
		table, err := Build(sunrise, noon, minB, maxB)
		require.NoError(t, err, "bounds %d..%d", minB, maxB)
		require.GreaterOrEqual(t, table.Len(), MinTableSize, "bounds %d..%d", minB, maxB)

		sawPeak := false
		for _, s := range table.Spans() {
			assert.GreaterOrEqual(t, s.Brightness, minB)
			assert.LessOrEqual(t, s.Brightness, maxB)
			if s.Brightness == maxB {
				sawPeak = true
			}
		}
		assert.True(t, sawPeak, "bounds %d..%d should reach max brightness", minB, maxB)
	}
}

func TestBuild_InvalidBounds(t *testing.T) {
	sunrise := MustParseClockTime("06:00")
	noon := MustParseClockTime("12:00")

	testCases := []struct {
		name     string
		min, max int
		message  string
	}{
		{"equal", 50, 50, "min brightness must be less than max brightness"},
		{"inverted", 70, 30, "min brightness must be less than max brightness"},
		{"negative min", -1, 50, "brightness values must be between 0 and 100"},
		{"max above 100", 0, 101, "brightness values must be between 0 and 100"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			table, err := Build(sunrise, noon, tc.min, tc.max)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRange)
			assert.Contains(t, err.Error(), tc.message)
			assert.Nil(t, table)
		})
	}
}

func TestBuild_NoonNotAfterSunrise(t *testing.T) {
	_, err := Build(MustParseClockTime("12:00"), MustParseClockTime("06:00"), 0, 100)
	require.ErrorIs(t, err, ErrRange)

	_, err = Build(MustParseClockTime("12:00"), MustParseClockTime("12:00"), 0, 100)
	require.ErrorIs(t, err, ErrRange)
}

func TestBuild_FullRangeCurve(t *testing.T) {
	table, err := Build(MustParseClockTime("06:00"), MustParseClockTime("12:00"), 0, 100)
	require.NoError(t, err)

	// 3.6 minutes per step never lands two samples on the same minute
	assert.Equal(t, 201, table.Len())

	expected := map[string]int{
		"06:00": 0,
		"09:00": 50,
		"12:00": 100,
		"15:00": 50,
		"18:00": 0,
	}
	for at, want := range expected {
		got, ok := table.Brightness(MustParseClockTime(at))
		require.True(t, ok, "missing entry at %s", at)
		assert.Equal(t, want, got, "brightness at %s", at)
	}

	last, ok := table.Last()
	require.True(t, ok)
	assert.Equal(t, "18:00", last.At.String())
	assert.Less(t, last.Brightness, 100, "afternoon samples should descend")
}

func TestBuild_RisesThenFalls(t *testing.T) {
	table, err := Build(MustParseClockTime("06:00"), MustParseClockTime("12:00"), 0, 100)
	require.NoError(t, err)

	noon := MustParseClockTime("12:00")
	prev := -1
	for _, s := range table.Spans() {
		if s.At > noon {
			break
		}
		assert.Greater(t, s.Brightness, prev, "morning must rise at %s", s.At)
		prev = s.Brightness
	}

	prev = 101
	for _, s := range table.Spans() {
		if s.At < noon {
			continue
		}
		assert.Less(t, s.Brightness, prev, "afternoon must fall at %s", s.At)
		prev = s.Brightness
	}
}

func TestBuild_PartialRange(t *testing.T) {
	table, err := Build(MustParseClockTime("06:00"), MustParseClockTime("12:00"), 20, 80)
	require.NoError(t, err)

	assert.Equal(t, 121, table.Len())

	first, _ := table.First()
	assert.Equal(t, Span{At: MustParseClockTime("06:00"), Brightness: 20}, first)

	peak, ok := table.Brightness(MustParseClockTime("12:00"))
	require.True(t, ok)
	assert.Equal(t, 80, peak)

	last, _ := table.Last()
	assert.Equal(t, Span{At: MustParseClockTime("18:00"), Brightness: 20}, last)
}

func TestBuild_ShortDayCollapsesSamples(t *testing.T) {
	table, err := Build(MustParseClockTime("06:00"), MustParseClockTime("06:30"), 0, 100)
	require.NoError(t, err)

	// 201 samples over an hour collapse onto the minutes 06:00..07:00
	assert.LessOrEqual(t, table.Len(), 61)
	assert.GreaterOrEqual(t, table.Len(), MinTableSize)

	peak, ok := table.Brightness(MustParseClockTime("06:30"))
	require.True(t, ok)
	assert.Equal(t, 100, peak)

	spans := table.Spans()
	for i := 1; i < len(spans); i++ {
		assert.Less(t, spans[i-1].At, spans[i].At, "keys must be unique and sorted")
	}
}

func TestBuild_DegenerateFallback(t *testing.T) {
	// Three samples at 00:00, 12:00 and 24:00 leave only two distinct minutes
	table, err := Build(MustParseClockTime("00:00"), MustParseClockTime("12:00"), 0, 1)
	require.NoError(t, err)

	assert.Equal(t, []Span{
		{At: MustParseClockTime("00:00"), Brightness: 0},
		{At: MustParseClockTime("12:00"), Brightness: 1},
		{At: MustParseClockTime("23:59"), Brightness: 0},
	}, table.Spans())
}

func TestBuild_FallbackNoonAtEndOfDay(t *testing.T) {
	sunrise := MustParseClockTime("11:59")
	noon := MustParseClockTime("23:59")

	for _, minB := range []int{0, 42, 99} {
		table, err := Build(sunrise, noon, minB, minB+1)
		require.NoError(t, err)

		assert.Equal(t, []Span{
			{At: MustParseClockTime("00:00"), Brightness: minB},
			{At: MustParseClockTime("11:59"), Brightness: minB},
			{At: MustParseClockTime("23:59"), Brightness: minB + 1},
		}, table.Spans(), "bounds %d..%d", minB, minB+1)
	}
}

func TestFallbackTable_KeysStayDistinct(t *testing.T) {
	table := fallbackTable(MustParseClockTime("00:00"), MustParseClockTime("23:59"), 10, 20)

	assert.Equal(t, []Span{
		{At: MustParseClockTime("00:00"), Brightness: 10},
		{At: MustParseClockTime("00:01"), Brightness: 10},
		{At: MustParseClockTime("23:59"), Brightness: 20},
	}, table.Spans())
}

func TestBuild_LongMorningWrapsPastMidnight(t *testing.T) {
	// 780 minutes to noon; the descent runs until 08:00 the next day
	table, err := Build(MustParseClockTime("06:00"), MustParseClockTime("19:00"), 0, 100)
	require.NoError(t, err)

	level, ok := table.Brightness(MustParseClockTime("00:04"))
	require.True(t, ok)
	assert.Equal(t, 61, level)

	s, err := table.Lookup(MustParseClockTime("03:00"))
	require.NoError(t, err)
	assert.Equal(t, Span{At: MustParseClockTime("02:55"), Brightness: 39}, s)

	first, _ := table.First()
	assert.Equal(t, MustParseClockTime("00:04"), first.At)

	level, ok = table.Brightness(MustParseClockTime("19:00"))
	require.True(t, ok)
	assert.Equal(t, 100, level)
}

func TestBuild_WithLastRay(t *testing.T) {
	table, err := Build(MustParseClockTime("06:00"), MustParseClockTime("12:00"), 0, 100, WithLastRay())
	require.NoError(t, err)

	assert.Equal(t, 202, table.Len())

	last, ok := table.Last()
	require.True(t, ok)
	assert.Equal(t, "18:03", last.At.String())
	assert.Equal(t, 0, last.Brightness)
}

func TestBuild_Idempotent(t *testing.T) {
	sunrise := MustParseClockTime("05:47")
	noon := MustParseClockTime("13:09")

	a, err := Build(sunrise, noon, 5, 95)
	require.NoError(t, err)
	b, err := Build(sunrise, noon, 5, 95)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Spans(), b.Spans())
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(0, 100))
	assert.NoError(t, ValidateRange(99, 100))
	assert.ErrorIs(t, ValidateRange(100, 100), ErrRange)
	assert.ErrorIs(t, ValidateRange(-5, 10), ErrRange)
	assert.ErrorIs(t, ValidateRange(10, 150), ErrRange)
}
