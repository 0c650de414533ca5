package postgres

import (
	"context"
	"database/sql"
)

// Client represents a PostgreSQL client interface for testing and abstraction
type Client interface {
	// Connect establishes a connection to the PostgreSQL database
	Connect(ctx context.Context) error

	// Disconnect closes the connection to the PostgreSQL database
	Disconnect() error

	// Exec executes a query without returning any rows
	Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// IsConnected returns whether Connect succeeded and Disconnect has not been called
	IsConnected() bool

	// HealthCheck reports connectivity and server version
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

var _ Client = (*PostgresClient)(nil)
