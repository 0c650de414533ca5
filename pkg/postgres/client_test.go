package postgres

import (
	"context"
	"testing"

	"github.com/saaga0h/daylight-platform/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_NotConnected(t *testing.T) {
	cfg := config.NewConfig()
	c := NewClient(cfg, nil)
	ctx := context.Background()

	assert.False(t, c.IsConnected())

	_, err := c.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, ErrNotConnected)

	status, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.Equal(t, "daylight", status.Database)
	assert.Equal(t, ErrNotConnected.Error(), status.Error)

	assert.NoError(t, c.Disconnect())
}
