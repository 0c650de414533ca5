package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/saaga0h/daylight-platform/internal/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PrintsTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--sunrise=06:00", "--solar-noon=12:00"}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, 201)
	assert.Equal(t, "06:00\t0", lines[0])
	assert.Contains(t, lines, "12:00\t100")
	assert.Equal(t, "18:00\t0", lines[len(lines)-1])
}

func TestRun_At(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--sunrise=06:00", "--solar-noon=12:00", "--at=09:02"}, &out))
	assert.Equal(t, "09:00\t50\n", out.String())
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--sunrise=06:00", "--solar-noon=12:00", "--min=20", "--max=80", "--json"}, &out))

	var table span.Table
	require.NoError(t, json.Unmarshal(out.Bytes(), &table))
	assert.Equal(t, 121, table.Len())
}

func TestRun_Errors(t *testing.T) {
	testCases := [][]string{
		{"--sunrise=06:00"},
		{"--sunrise=06:00", "--solar-noon=noon"},
		{"--sunrise=12:00", "--solar-noon=06:00"},
		{"--sunrise=06:00", "--solar-noon=12:00", "--min=50", "--max=50"},
		{"--sunrise=06:00", "--solar-noon=12:00", "--at=later"},
		{"--date=yesterday"},
		{"--no-such-flag"},
	}

	for _, args := range testCases {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			assert.Error(t, run(args, &bytes.Buffer{}))
		})
	}
}
