package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/operator/actions"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
)

type transactionReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error)
}

// TransactionService handles transaction business logic.
type TransactionService struct {
	reader   transactionReader
	operator processor
}

func NewTransactionService(reader transactionReader, op processor) *TransactionService {
	return &TransactionService{reader: reader, operator: op}
}

// CreateTransaction validates a submission, derives its milestones and stores it.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, sub TransactionSubmission) (*Transaction, error) {
	address := strings.TrimSpace(sub.PropertyAddress)
	if address == "" {
		return nil, invalid("propertyAddress", nil)
	}
	clientName := strings.TrimSpace(sub.ClientName)
	if clientName == "" {
		return nil, invalid("clientName", nil)
	}

	txType, err := parseType(sub.Type)
	if err != nil {
		return nil, err
	}
	contractDate, err := parseContractDate(sub.ContractDate)
	if err != nil {
		return nil, err
	}
	closingDate, err := deadline.ParseDate(sub.ClosingDate)
	if err != nil {
		return nil, invalid("closingDate", err)
	}

	schedule, err := deadline.Calculate(contractDate, closingDate, txType)
	if err != nil {
		return nil, scheduleError(err)
	}

	create := &transaction.TransactionCreate{
		UserID:          userID,
		PropertyAddress: address,
		ClientName:      clientName,
		ClientEmail:     strings.TrimSpace(sub.ClientEmail),
		Type:            txType,
		ContractDate:    contractDate,
		ListPrice:       parseListPrice(sub.ListPrice),
		Schedule:        schedule,
		Overrides:       deadline.Overrides{},
		Notes:           sub.Notes,
	}
	action := &actions.CreateTransaction{Create: create}
	if err := s.operator.Process(ctx, action); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return &Transaction{
		ID:              action.ID,
		UserID:          userID,
		PropertyAddress: create.PropertyAddress,
		ClientName:      create.ClientName,
		ClientEmail:     create.ClientEmail,
		Type:            create.Type,
		ContractDate:    create.ContractDate,
		ListPrice:       create.ListPrice,
		Computed:        schedule,
		Overrides:       create.Overrides,
		Effective:       schedule,
		Notes:           create.Notes,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ListTransactions returns every transaction owned by userID with effective milestones.
func (s *TransactionService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]Transaction, error) {
	rows, err := s.reader.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]Transaction, len(rows))
	for i, row := range rows {
		result[i] = transactionFromStorage(row)
	}
	return result, nil
}

// GetTransaction returns ErrNotFound both when the transaction is absent and when another
// user owns it.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	row, err := s.reader.FindByID(ctx, id)
	if errors.Is(err, transaction.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if row.UserID != userID {
		return nil, ErrNotFound
	}

	tx := transactionFromStorage(row)
	return &tx, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, changes TransactionChanges) (*Transaction, error) {
	action := &actions.UpdateTransaction{ID: id, UserID: userID}

	if v, ok := changes.PropertyAddress.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, invalid("propertyAddress", nil)
		}
		action.PropertyAddress = omit.From(v)
	}
	if v, ok := changes.ClientName.Get(); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			return nil, invalid("clientName", nil)
		}
		action.ClientName = omit.From(v)
	}
	if v, ok := changes.ClientEmail.Get(); ok {
		action.ClientEmail = omit.From(strings.TrimSpace(v))
	}
	if v, ok := changes.Type.Get(); ok {
		txType, err := parseType(v)
		if err != nil {
			return nil, err
		}
		action.Type = omit.From(txType)
	}
	if v, ok := changes.ContractDate.Get(); ok {
		contractDate, err := parseContractDate(v)
		if err != nil {
			return nil, err
		}
		action.ContractDate = omit.From(contractDate)
	}
	if v, ok := changes.ClosingDate.Get(); ok {
		closingDate, err := deadline.ParseDate(v)
		if err != nil {
			return nil, invalid("closingDate", err)
		}
		action.ClosingDate = omit.From(closingDate)
	}
	if v, ok := changes.ListPrice.Get(); ok {
		action.ListPrice = omit.From(parseListPrice(v))
	}
	if v, ok := changes.Notes.Get(); ok {
		action.Notes = omit.From(v)
	}
	if v, ok := changes.Overrides.Get(); ok {
		overrides, err := deadline.ParseOverrides(v)
		if err != nil {
			return nil, invalid("overrides", err)
		}
		action.Overrides = omit.From(overrides)
	}

	err := s.operator.Process(ctx, action)
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		return nil, ErrNotFound
	case isScheduleError(err):
		return nil, scheduleError(err)
	case err != nil:
		return nil, fmt.Errorf("update transaction: %w", err)
	}

	tx := transactionFromStorage(action.Result)
	return &tx, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	err := s.operator.Process(ctx, &actions.DeleteTransaction{ID: id, UserID: userID})
	if errors.Is(err, transaction.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func parseType(raw string) (deadline.TransactionType, error) {
	t := deadline.TransactionType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", invalid("transactionType", deadline.ErrInvalidType)
	}
	return t, nil
}

func parseContractDate(raw string) (time.Time, error) {
	d, err := deadline.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalid("contractDate", err)
	}
	if d.IsZero() {
		return time.Time{}, invalid("contractDate", deadline.ErrMissingContractDate)
	}
	return d, nil
}

// parseListPrice falls back to zero for absent, malformed or negative input.
func parseListPrice(raw string) decimal.Decimal {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || price.IsNegative() {
		return decimal.Zero
	}
	return price
}

func isScheduleError(err error) bool {
	return errors.Is(err, deadline.ErrMissingContractDate) ||
		errors.Is(err, deadline.ErrInvalidType) ||
		errors.Is(err, deadline.ErrClosingBeforeContract)
}

func scheduleError(err error) error {
	if errors.Is(err, deadline.ErrClosingBeforeContract) {
		return invalid("closingDate", err)
	}
	if errors.Is(err, deadline.ErrInvalidType) {
		return invalid("transactionType", err)
	}
	return invalid("contractDate", err)
}
