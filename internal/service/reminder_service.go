package service

import (
	"context"

	"github.com/carson-networks/deadline-server/internal/reminder"
)

type reminderScanner interface {
	Scan(ctx context.Context) (reminder.Summary, error)
	SenderInitialized() bool
}

type automation interface {
	Running() bool
}

// ReminderStatus reports the state of the reminder automation.
type ReminderStatus struct {
	AutomationRunning bool
	EmailInitialized  bool
}

type ReminderService struct {
	scanner   reminderScanner
	scheduler automation
}

func NewReminderService(scanner reminderScanner, scheduler automation) *ReminderService {
	return &ReminderService{scanner: scanner, scheduler: scheduler}
}

// RunReminders performs one scan pass synchronously.
func (s *ReminderService) RunReminders(ctx context.Context) (reminder.Summary, error) {
	return s.scanner.Scan(ctx)
}

func (s *ReminderService) Status() ReminderStatus {
	return ReminderStatus{
		AutomationRunning: s.scheduler != nil && s.scheduler.Running(),
		EmailInitialized:  s.scanner.SenderInitialized(),
	}
}
