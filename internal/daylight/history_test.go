package daylight

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saaga0h/daylight-platform/pkg/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	query string
	args  []interface{}
}

type fakeDB struct {
	calls   []execCall
	execErr error
}

func (f *fakeDB) Connect(ctx context.Context) error { return nil }
func (f *fakeDB) Disconnect() error                 { return nil }
func (f *fakeDB) IsConnected() bool                 { return true }

func (f *fakeDB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	f.calls = append(f.calls, execCall{query: query, args: args})
	if f.execErr != nil {
		return nil, f.execErr
	}
	return driver.RowsAffected(1), nil
}

func (f *fakeDB) HealthCheck(ctx context.Context) (*postgres.HealthStatus, error) {
	return &postgres.HealthStatus{Connected: true}, nil
}

func TestHistoryStore_EnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewHistoryStore(db, discardLogger()).EnsureSchema(context.Background()))

	require.Len(t, db.calls, 1)
	assert.Contains(t, db.calls[0].query, "CREATE TABLE IF NOT EXISTS brightness_history")
}

func TestHistoryStore_Record(t *testing.T) {
	db := &fakeDB{}
	store := NewHistoryStore(db, discardLogger())
	at := time.Date(2025, 3, 20, 9, 2, 0, 0, time.UTC)

	err := store.Record(context.Background(), HistoryRecord{
		Device:     "desk",
		AppliedAt:  at,
		SpanTime:   "09:00",
		Brightness: 50,
		Source:     "daylight-agent",
	})
	require.NoError(t, err)

	require.Len(t, db.calls, 1)
	args := db.calls[0].args
	require.Len(t, args, 6)
	id, ok := args[0].(uuid.UUID)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, []interface{}{"desk", at, "09:00", 50, "daylight-agent"}, args[1:])
}

func TestHistoryStore_RecordKeepsGivenID(t *testing.T) {
	db := &fakeDB{}
	id := uuid.New()

	require.NoError(t, NewHistoryStore(db, discardLogger()).Record(context.Background(), HistoryRecord{ID: id}))
	assert.Equal(t, id, db.calls[0].args[0])
}

func TestHistoryStore_ExecError(t *testing.T) {
	db := &fakeDB{execErr: postgres.ErrNotConnected}

	err := NewHistoryStore(db, discardLogger()).Record(context.Background(), HistoryRecord{Device: "desk"})
	assert.True(t, errors.Is(err, postgres.ErrNotConnected))

	err = NewHistoryStore(db, discardLogger()).EnsureSchema(context.Background())
	assert.ErrorIs(t, err, postgres.ErrNotConnected)
}
