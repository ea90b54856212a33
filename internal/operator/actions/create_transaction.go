package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/storage"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
)

// CreateTransaction persists a submitted transaction with its computed schedule.
// ID is set once Perform succeeds.
type CreateTransaction struct {
	Create *transaction.TransactionCreate

	ID uuid.UUID
}

func (t *CreateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	id, err := writer.Transactions.Insert(ctx, t.Create)
	if err != nil {
		return err
	}

	t.ID = id
	return nil
}
