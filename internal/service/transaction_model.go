package service

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
)

// Transaction represents a transaction in the service layer. Computed holds the derived
// schedule and Effective the schedule after overrides.
type Transaction struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PropertyAddress string
	ClientName      string
	ClientEmail     string
	Type            deadline.TransactionType
	ContractDate    time.Time
	ListPrice       decimal.Decimal
	Computed        deadline.Schedule
	Overrides       deadline.Overrides
	Effective       deadline.Schedule
	Notes           string
	CreatedAt       time.Time
}

// TransactionSubmission is the raw submission as received from a client.
type TransactionSubmission struct {
	PropertyAddress string
	ClientName      string
	ClientEmail     string
	Type            string
	ContractDate    string
	ClosingDate     string
	ListPrice       string
	Notes           string
}

// TransactionChanges is an explicit update. Unset fields are left untouched.
type TransactionChanges struct {
	PropertyAddress omit.Val[string]
	ClientName      omit.Val[string]
	ClientEmail     omit.Val[string]
	Type            omit.Val[string]
	ContractDate    omit.Val[string]
	ClosingDate     omit.Val[string]
	ListPrice       omit.Val[string]
	Notes           omit.Val[string]
	Overrides       omit.Val[map[string]string]
}

func transactionFromStorage(tx *transaction.Transaction) Transaction {
	overrides := tx.Overrides
	if overrides == nil {
		overrides = deadline.Overrides{}
	}
	return Transaction{
		ID:              tx.ID,
		UserID:          tx.UserID,
		PropertyAddress: tx.PropertyAddress,
		ClientName:      tx.ClientName,
		ClientEmail:     tx.ClientEmail,
		Type:            tx.Type,
		ContractDate:    tx.ContractDate,
		ListPrice:       tx.ListPrice,
		Computed:        tx.Schedule,
		Overrides:       overrides,
		Effective:       deadline.EffectiveSchedule(tx.Schedule, overrides),
		Notes:           tx.Notes,
		CreatedAt:       tx.CreatedAt,
	}
}
