package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/deadline-server/internal/deadline"
)

const tableName = "transactions"

var ErrNotFound = errors.New("transaction not found")

var columns = []any{
	"id",
	"user_id",
	"property_address",
	"client_name",
	"client_email",
	"transaction_type",
	"contract_date",
	"closing_date",
	"list_price",
	"option_period_end",
	"inspection_date",
	"appraisal_date",
	"financing_deadline",
	"overrides",
	"notes",
	"created_at",
}

// Transaction represents a transaction record.
type Transaction struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PropertyAddress string
	ClientName      string
	ClientEmail     string
	Type            deadline.TransactionType
	ContractDate    time.Time
	ListPrice       decimal.Decimal
	Schedule        deadline.Schedule
	Overrides       deadline.Overrides
	Notes           string
	CreatedAt       time.Time
}

// TransactionCreate is the input for creating a new transaction.
type TransactionCreate struct {
	UserID          uuid.UUID
	PropertyAddress string
	ClientName      string
	ClientEmail     string
	Type            deadline.TransactionType
	ContractDate    time.Time
	ListPrice       decimal.Decimal
	Schedule        deadline.Schedule
	Overrides       deadline.Overrides
	Notes           string
}

// TransactionUpdate enumerates the columns a caller may change. Unset values are left untouched.
type TransactionUpdate struct {
	PropertyAddress omit.Val[string]
	ClientName      omit.Val[string]
	ClientEmail     omit.Val[string]
	Type            omit.Val[deadline.TransactionType]
	ContractDate    omit.Val[time.Time]
	ListPrice       omit.Val[decimal.Decimal]
	Schedule        omit.Val[deadline.Schedule]
	Overrides       omit.Val[deadline.Overrides]
	Notes           omit.Val[string]
}

// ITransactionReader defines the read operations on transactions.
type ITransactionReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error)
	ListOpen(ctx context.Context, onOrAfter time.Time) ([]*Transaction, error)
}

// ITransactionWriter defines the transactional write operations on transactions.
type ITransactionWriter interface {
	ITransactionReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, update *TransactionUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionRow struct {
	ID                uuid.UUID          `db:"id"`
	UserID            uuid.UUID          `db:"user_id"`
	PropertyAddress   string             `db:"property_address"`
	ClientName        string             `db:"client_name"`
	ClientEmail       string             `db:"client_email"`
	TransactionType   string             `db:"transaction_type"`
	ContractDate      time.Time          `db:"contract_date"`
	ClosingDate       time.Time          `db:"closing_date"`
	ListPrice         decimal.Decimal    `db:"list_price"`
	OptionPeriodEnd   time.Time          `db:"option_period_end"`
	InspectionDate    time.Time          `db:"inspection_date"`
	AppraisalDate     time.Time          `db:"appraisal_date"`
	FinancingDeadline time.Time          `db:"financing_deadline"`
	Overrides         deadline.Overrides `db:"overrides"`
	Notes             string             `db:"notes"`
	CreatedAt         time.Time          `db:"created_at"`
}

func rowToTransaction(row transactionRow) *Transaction {
	overrides := row.Overrides
	if overrides == nil {
		overrides = deadline.Overrides{}
	}
	return &Transaction{
		ID:              row.ID,
		UserID:          row.UserID,
		PropertyAddress: row.PropertyAddress,
		ClientName:      row.ClientName,
		ClientEmail:     row.ClientEmail,
		Type:            deadline.TransactionType(row.TransactionType),
		ContractDate:    deadline.Normalize(row.ContractDate),
		ListPrice:       row.ListPrice,
		Schedule: deadline.Schedule{
			OptionPeriodEnd:   deadline.Normalize(row.OptionPeriodEnd),
			InspectionDate:    deadline.Normalize(row.InspectionDate),
			AppraisalDate:     deadline.Normalize(row.AppraisalDate),
			FinancingDeadline: deadline.Normalize(row.FinancingDeadline),
			ClosingDate:       deadline.Normalize(row.ClosingDate),
		},
		Overrides: overrides,
		Notes:     row.Notes,
		CreatedAt: row.CreatedAt,
	}
}

func rowsToTransactions(rows []transactionRow) []*Transaction {
	result := make([]*Transaction, len(rows))
	for i, row := range rows {
		result[i] = rowToTransaction(row)
	}
	return result
}
