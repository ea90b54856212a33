package reminder

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/deadline-server/internal/service"
)

type ReminderStatusResponse struct {
	AutomationRunning bool `json:"automationRunning" doc:"Whether the scheduled scan is active"`
	EmailInitialized  bool `json:"emailInitialized" doc:"Whether the email sender is configured"`
}

type ReminderStatusOutput struct {
	Body ReminderStatusResponse
}

type reminderStatusReader interface {
	Status() service.ReminderStatus
}

// ReminderStatusHandler handles GET /v1/reminders/status.
type ReminderStatusHandler struct {
	ReminderService reminderStatusReader
}

func NewReminderStatusHandler(svc reminderStatusReader) *ReminderStatusHandler {
	return &ReminderStatusHandler{ReminderService: svc}
}

func (h *ReminderStatusHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "reminder-status",
		Method:      http.MethodGet,
		Path:        "/v1/reminders/status",
		Summary:     "Reminder automation status",
		Tags:        []string{"Reminders"},
	}, h.handle)
}

func (h *ReminderStatusHandler) handle(_ context.Context, _ *struct{}) (*ReminderStatusOutput, error) {
	status := h.ReminderService.Status()
	return &ReminderStatusOutput{Body: ReminderStatusResponse{
		AutomationRunning: status.AutomationRunning,
		EmailInitialized:  status.EmailInitialized,
	}}, nil
}
