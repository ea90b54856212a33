package transaction

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

var _ ITransactionReader = (*Reader)(nil)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindByID retrieves a transaction by primary key.
func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.findOne(ctx, id, false)
}

// ListByUser returns every transaction owned by userID, newest first.
func (r *Reader) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Transaction, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, err
	}
	return rowsToTransactions(rows), nil
}

// ListOpen returns transactions with a milestone still on or after onOrAfter: either the
// stored closing date or any override date qualifies, since an override can push a milestone
// past the stored closing.
func (r *Reader) ListOpen(ctx context.Context, onOrAfter time.Time) ([]*Transaction, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Or(
			psql.Quote("closing_date").GTE(psql.Arg(onOrAfter)),
			psql.Raw(
				"EXISTS (SELECT 1 FROM jsonb_each_text(overrides) AS o WHERE o.value::date >= ?::date)",
				onOrAfter,
			),
		)),
		sm.OrderBy(psql.Quote("closing_date")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, err
	}
	return rowsToTransactions(rows), nil
}

func (r *Reader) findOne(ctx context.Context, id uuid.UUID, forUpdate bool) (*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[transactionRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToTransaction(row), nil
}
