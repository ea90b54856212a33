package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/storage"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
)

// DeleteTransaction removes a transaction owned by UserID.
type DeleteTransaction struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

func (d *DeleteTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	existing, err := writer.Transactions.FindByIDForUpdate(ctx, d.ID)
	if err != nil {
		return err
	}
	if existing.UserID != d.UserID {
		return transaction.ErrNotFound
	}

	return writer.Transactions.Delete(ctx, d.ID)
}
