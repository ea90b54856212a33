package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/carson-networks/deadline-server/internal/logging"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type automation interface {
	Running() bool
}

type response struct {
	Database          string `json:"database"`
	AutomationRunning bool   `json:"automationRunning"`
}

type Handler struct {
	DB        pinger
	Scheduler automation
	Timeout   time.Duration
}

func NewHandler(db pinger, scheduler automation) Handler {
	return Handler{DB: db, Scheduler: scheduler, Timeout: 2 * time.Second}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	ctx, cancel := context.WithTimeout(req.Context(), h.Timeout)
	defer cancel()

	body := response{Database: "ok"}
	code := http.StatusOK
	endPing := logData.AddTiming("ping")
	pingErr := h.DB.Ping(ctx)
	endPing()
	if pingErr != nil {
		body.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	if h.Scheduler != nil {
		body.AutomationRunning = h.Scheduler.Running()
	}
	logData.AddData("automationRunning", body.AutomationRunning)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		return err
	}
	if pingErr != nil {
		return errors.Join(errors.New("status: database ping failed"), pingErr)
	}
	return nil
}
