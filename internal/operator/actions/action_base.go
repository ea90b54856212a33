package actions

import (
	"context"
	"errors"

	"github.com/carson-networks/deadline-server/internal/storage"
)

var ErrTrialNotExtendable = errors.New("trial cannot be extended")

// IAction is one unit of work applied inside a single database transaction.
type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}
