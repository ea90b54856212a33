package actions

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/storage"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
)

// UpdateTransaction applies an explicit field update to a transaction owned by UserID.
// A change to the contract date, closing date or type recomputes the schedule under the
// same row lock. Result holds the updated record once Perform succeeds.
type UpdateTransaction struct {
	ID     uuid.UUID
	UserID uuid.UUID

	PropertyAddress omit.Val[string]
	ClientName      omit.Val[string]
	ClientEmail     omit.Val[string]
	Type            omit.Val[deadline.TransactionType]
	ContractDate    omit.Val[time.Time]
	ClosingDate     omit.Val[time.Time]
	ListPrice       omit.Val[decimal.Decimal]
	Overrides       omit.Val[deadline.Overrides]
	Notes           omit.Val[string]

	Result *transaction.Transaction
}

func (u *UpdateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	existing, err := writer.Transactions.FindByIDForUpdate(ctx, u.ID)
	if err != nil {
		return err
	}
	if existing.UserID != u.UserID {
		return transaction.ErrNotFound
	}

	update := &transaction.TransactionUpdate{
		PropertyAddress: u.PropertyAddress,
		ClientName:      u.ClientName,
		ClientEmail:     u.ClientEmail,
		Type:            u.Type,
		ContractDate:    u.ContractDate,
		ListPrice:       u.ListPrice,
		Overrides:       u.Overrides,
		Notes:           u.Notes,
	}

	if u.Type.IsSet() || u.ContractDate.IsSet() || u.ClosingDate.IsSet() {
		contractDate := u.ContractDate.GetOr(existing.ContractDate)
		closingDate := u.ClosingDate.GetOr(existing.Schedule.ClosingDate)
		txType := u.Type.GetOr(existing.Type)

		schedule, err := deadline.Calculate(contractDate, closingDate, txType)
		if err != nil {
			return err
		}
		update.Schedule = omit.From(schedule)
	}

	if err := writer.Transactions.Update(ctx, u.ID, update); err != nil {
		return err
	}

	updated, err := writer.Transactions.FindByID(ctx, u.ID)
	if err != nil {
		return err
	}
	u.Result = updated
	return nil
}
