package reminder

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/logging"
	"github.com/carson-networks/deadline-server/internal/reminder"
)

type RunRemindersResponse struct {
	Sent    int `json:"sent" doc:"Reminders delivered in this pass"`
	Errors  int `json:"errors" doc:"Reminders that failed to send"`
	Skipped int `json:"skipped" doc:"Transactions skipped because the owner's subscription lapsed"`
}

type RunRemindersOutput struct {
	Body RunRemindersResponse
}

type reminderRunner interface {
	RunReminders(ctx context.Context) (reminder.Summary, error)
}

// RunRemindersHandler handles POST /v1/reminders/run.
type RunRemindersHandler struct {
	ReminderService reminderRunner
}

func NewRunRemindersHandler(svc reminderRunner) *RunRemindersHandler {
	return &RunRemindersHandler{ReminderService: svc}
}

func (h *RunRemindersHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "run-reminders",
		Method:      http.MethodPost,
		Path:        "/v1/reminders/run",
		Summary:     "Run reminder scan",
		Description: "Runs one reminder scan pass synchronously and returns its summary.",
		Tags:        []string{"Reminders"},
		Security:    auth.BearerSecurity,
	}, h.handle)
}

func (h *RunRemindersHandler) handle(ctx context.Context, _ *struct{}) (*RunRemindersOutput, error) {
	logData := logging.GetLogData(ctx)
	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("scanMs")
	}
	summary, err := h.ReminderService.RunReminders(ctx)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "reminder scan failed", err)
	}

	if logData != nil {
		logData.AddData("sent", summary.Sent)
		logData.AddData("errors", summary.Errors)
	}
	return &RunRemindersOutput{Body: RunRemindersResponse{
		Sent:    summary.Sent,
		Errors:  summary.Errors,
		Skipped: summary.Skipped,
	}}, nil
}
