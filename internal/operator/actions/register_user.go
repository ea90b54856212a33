package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/storage"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

// RegisterUser inserts a new user in the trial state. ID is set once Perform succeeds.
type RegisterUser struct {
	Create *user.UserCreate

	ID uuid.UUID
}

func (r *RegisterUser) Perform(ctx context.Context, writer *storage.Writer) error {
	id, err := writer.Users.Insert(ctx, r.Create)
	if err != nil {
		return err
	}

	r.ID = id
	return nil
}
