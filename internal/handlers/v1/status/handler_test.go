package status

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/deadline-server/internal/logging"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubScheduler bool

func (s stubScheduler) Running() bool { return bool(s) }

func createTestLogData() *logging.LogData {
	logger := logging.SetupLogging()
	return logging.NewLogData(logger)
}

func TestHandler_GoodMethod(t *testing.T) {
	statusHandler := NewHandler(stubPinger{}, stubScheduler(true))
	req := httptest.NewRequest(http.MethodGet, "/status", nil)

	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.NoError(t, err)

	res := w.Result()
	assert.Equal(t, 200, res.StatusCode)
	assert.JSONEq(t, `{"database":"ok","automationRunning":true}`, w.Body.String())
}

func TestHandler_BadMethod(t *testing.T) {
	statusHandler := NewHandler(stubPinger{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.Error(t, err)

	res := w.Result()
	assert.Equal(t, 400, res.StatusCode)
}

func TestHandler_DatabaseDown(t *testing.T) {
	statusHandler := NewHandler(stubPinger{err: errors.New("connection refused")}, stubScheduler(false))
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	require.Error(t, err)

	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
	assert.JSONEq(t, `{"database":"unreachable","automationRunning":false}`, w.Body.String())
}
