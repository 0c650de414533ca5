package daylight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/saaga0h/daylight-platform/pkg/postgres"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS brightness_history (
    id          UUID PRIMARY KEY,
    device      TEXT        NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL,
    span_time   TEXT        NOT NULL,
    brightness  SMALLINT    NOT NULL,
    source      TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_brightness_history_device_applied
    ON brightness_history (device, applied_at DESC);
`

const insertHistory = `
INSERT INTO brightness_history (id, device, applied_at, span_time, brightness, source)
VALUES ($1, $2, $3, $4, $5, $6)`

// HistoryRecord is one applied brightness level
type HistoryRecord struct {
	ID         uuid.UUID
	Device     string
	AppliedAt  time.Time
	SpanTime   string
	Brightness int
	Source     string
}

// HistoryRecorder persists applied levels
type HistoryRecorder interface {
	Record(ctx context.Context, rec HistoryRecord) error
}

// HistoryStore writes brightness history to Postgres
type HistoryStore struct {
	db     postgres.Client
	logger *slog.Logger
}

func NewHistoryStore(db postgres.Client, logger *slog.Logger) *HistoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStore{db: db, logger: logger}
}

// EnsureSchema creates the history table when it does not exist yet
func (h *HistoryStore) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to create brightness_history: %w", err)
	}
	return nil
}

// Record inserts rec, assigning an ID when it has none
func (h *HistoryStore) Record(ctx context.Context, rec HistoryRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	_, err := h.db.Exec(ctx, insertHistory,
		rec.ID, rec.Device, rec.AppliedAt, rec.SpanTime, rec.Brightness, rec.Source)
	if err != nil {
		return fmt.Errorf("failed to insert brightness history: %w", err)
	}

	h.logger.Debug("Recorded brightness history",
		"id", rec.ID,
		"device", rec.Device,
		"brightness", rec.Brightness)
	return nil
}
