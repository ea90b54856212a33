package service

import (
	"context"

	"github.com/carson-networks/deadline-server/internal/operator/actions"
)

// processor runs a write action inside its own database transaction.
type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Service holds all business logic services.
type Service struct {
	Transactions *TransactionService
	Users        *UserService
	Billing      *BillingService
	Reminders    *ReminderService
}
