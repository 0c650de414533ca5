package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saaga0h/daylight-platform/pkg/mqtt"
	"github.com/saaga0h/daylight-platform/pkg/postgres"
	"github.com/saaga0h/daylight-platform/pkg/redis"
)

// StatusProvider exposes a JSON-encodable snapshot of the agent
type StatusProvider interface {
	StatusSnapshot() interface{}
}

// Checker provides health check functionality for agents
type Checker struct {
	mqtt     mqtt.Client
	redis    redis.Client
	postgres postgres.Client
	status   StatusProvider
	logger   *slog.Logger
}

// NewChecker creates a new health checker with the given dependencies.
// postgres may be nil when history is disabled.
func NewChecker(mqttClient mqtt.Client, redisClient redis.Client, pgClient postgres.Client, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:     mqttClient,
		redis:    redisClient,
		postgres: pgClient,
		logger:   logger,
	}
}

// SetStatusProvider wires the agent behind /status
func (h *Checker) SetStatusProvider(p StatusProvider) {
	h.status = p
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp string    `json:"timestamp"`
	Services  *Services `json:"services,omitempty"`
}

// Services represents the status of external dependencies
type Services struct {
	Redis    string `json:"redis"`
	MQTT     string `json:"mqtt"`
	Postgres string `json:"postgres,omitempty"`
}

// Register mounts /health, /health/detailed and /status on mux
func (h *Checker) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HandlerFunc())
	mux.HandleFunc("/health/detailed", h.DetailedHandlerFunc())
	mux.HandleFunc("/status", h.StatusHandlerFunc())
}

// HandlerFunc returns a liveness handler that does not touch dependencies
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// DetailedHandlerFunc returns a handler that checks all dependencies
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := &Services{
			Redis: "disconnected",
			MQTT:  "disconnected",
		}

		if h.mqtt != nil && h.mqtt.IsConnected() {
			services.MQTT = "connected"
		}
		if h.redis != nil && h.redis.Ping(ctx) == nil {
			services.Redis = "connected"
		}
		if h.postgres != nil {
			services.Postgres = "disconnected"
			if st, err := h.postgres.HealthCheck(ctx); err == nil && st.Connected {
				services.Postgres = "connected"
			}
		}

		status := "healthy"
		statusCode := http.StatusOK
		if services.Redis != "connected" || services.MQTT != "connected" ||
			(services.Postgres != "" && services.Postgres != "connected") {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		h.writeJSON(w, statusCode, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
		})
	}
}

// StatusHandlerFunc returns the agent snapshot, or 503 before one is wired
func (h *Checker) StatusHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.status == nil {
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "agent not ready"})
			return
		}
		h.writeJSON(w, http.StatusOK, h.status.StatusSnapshot())
	}
}

func (h *Checker) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}
