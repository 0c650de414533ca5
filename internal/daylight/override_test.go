package daylight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverride(t *testing.T) {
	c := &clock{now: time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC)}
	o := NewOverride(c.Now)

	assert.False(t, o.Active())
	assert.False(t, o.Clear())

	expires := o.Set(15 * time.Minute)
	assert.Equal(t, time.Date(2025, 3, 20, 18, 15, 0, 0, time.UTC), expires)
	assert.True(t, o.Active())

	got, ok := o.ExpiresAt()
	assert.True(t, ok)
	assert.Equal(t, expires, got)

	c.Set(expires)
	assert.False(t, o.Active(), "expires at the deadline")
	_, ok = o.ExpiresAt()
	assert.False(t, ok)

	o.Set(time.Minute)
	assert.True(t, o.Clear())
	assert.False(t, o.Active())
}
