package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ IUserReader = (*Reader)(nil)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.findOne(ctx, psql.Quote("id").EQ(psql.Arg(id)))
}

// FindByEmail matches case-insensitively; emails are stored lower-cased.
func (r *Reader) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, psql.Quote("email").EQ(psql.Arg(NormalizeEmail(email))))
}

func (r *Reader) FindByStripeCustomerID(ctx context.Context, customerID string) (*User, error) {
	if customerID == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, psql.Quote("stripe_customer_id").EQ(psql.Arg(customerID)))
}

func (r *Reader) findOne(ctx context.Context, where bob.Expression) (*User, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(where),
		sm.Limit(1),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[userRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToUser(row), nil
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
