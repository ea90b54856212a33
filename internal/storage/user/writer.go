package user

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

const uniqueViolation = "23505"

var _ IUserWriter = (*Writer)(nil)

type Writer struct {
	exec bob.Executor
	Reader
}

func NewWriter(exec bob.Executor) *Writer {
	return &Writer{
		exec: exec,
		Reader: Reader{
			exec: exec,
		},
	}
}

// Insert registers a user in the trial state and returns its generated ID.
func (w *Writer) Insert(ctx context.Context, create *UserCreate) (uuid.UUID, error) {
	query := psql.Insert(
		im.Into(tableName, "email", "password_hash", "name", "subscription_status"),
		im.Values(psql.Arg(
			NormalizeEmail(create.Email),
			create.PasswordHash,
			create.Name,
			string(SubscriptionTrial),
		)),
		im.Returning("id"),
	)

	id, err := bob.One(ctx, w.exec, query, scan.SingleColumnMapper[uuid.UUID])
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return uuid.Nil, ErrDuplicateEmail
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (w *Writer) UpdateSubscription(ctx context.Context, id uuid.UUID, update *SubscriptionUpdate) error {
	queryMods := []bob.Mod[*dialect.UpdateQuery]{um.Table(tableName)}
	if update.Status != "" {
		queryMods = append(queryMods, um.SetCol("subscription_status").ToArg(string(update.Status)))
	}
	if update.StripeCustomerID != "" {
		queryMods = append(queryMods, um.SetCol("stripe_customer_id").ToArg(update.StripeCustomerID))
	}
	if len(queryMods) == 1 {
		return nil
	}
	queryMods = append(queryMods, um.Where(psql.Quote("id").EQ(psql.Arg(id))))

	result, err := bob.Exec(ctx, w.exec, psql.Update(queryMods...))
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTrialExtended flips the one-time trial extension flag. It reports false when the
// trial had already been extended.
func (w *Writer) MarkTrialExtended(ctx context.Context, id uuid.UUID) (bool, error) {
	query := psql.Update(
		um.Table(tableName),
		um.SetCol("trial_extended").ToArg(true),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("trial_extended").EQ(psql.Arg(false))),
	)
	result, err := bob.Exec(ctx, w.exec, query)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
