package daylight

import (
	"sync"
	"time"
)

// Override pauses automatic adjustment while someone holds the display at
// a level of their own choosing
type Override struct {
	mu        sync.Mutex
	expiresAt time.Time
	now       func() time.Time
}

func NewOverride(now func() time.Time) *Override {
	return &Override{now: now}
}

// Set starts or extends an override
func (o *Override) Set(d time.Duration) time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.expiresAt = o.now().Add(d)
	return o.expiresAt
}

// Active reports whether an override is in force. An expired override is cleared.
func (o *Override) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.expiresAt.IsZero() {
		return false
	}
	if !o.now().Before(o.expiresAt) {
		o.expiresAt = time.Time{}
		return false
	}
	return true
}

// Clear ends the override early. Returns false when none was active.
func (o *Override) Clear() bool {
	active := o.Active()

	o.mu.Lock()
	defer o.mu.Unlock()
	o.expiresAt = time.Time{}
	return active
}

// ExpiresAt returns the end of the active override
func (o *Override) ExpiresAt() (time.Time, bool) {
	if !o.Active() {
		return time.Time{}, false
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.expiresAt, true
}
