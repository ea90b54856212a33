package transaction

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/deadline-server/internal/deadline"
)

var _ ITransactionWriter = (*Writer)(nil)

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

// FindByIDForUpdate locks the row for the rest of the enclosing transaction.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return w.findOne(ctx, id, true)
}

// Insert creates a new transaction and returns its generated ID.
func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error) {
	overrides := create.Overrides
	if overrides == nil {
		overrides = deadline.Overrides{}
	}

	query := psql.Insert(
		im.Into(tableName,
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
		),
		im.Values(psql.Arg(
			create.UserID,
			create.PropertyAddress,
			create.ClientName,
			create.ClientEmail,
			string(create.Type),
			create.ContractDate,
			create.Schedule.ClosingDate,
			create.ListPrice,
			create.Schedule.OptionPeriodEnd,
			create.Schedule.InspectionDate,
			create.Schedule.AppraisalDate,
			create.Schedule.FinancingDeadline,
			overrides,
			create.Notes,
		)),
		im.Returning("id"),
	)

	id, err := bob.One(ctx, w.exec, query, scan.SingleColumnMapper[uuid.UUID])
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Update writes only the fields set on update.
func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *TransactionUpdate) error {
	queryMods := []bob.Mod[*dialect.UpdateQuery]{um.Table(tableName)}
	set := func(column string, value any) {
		queryMods = append(queryMods, um.SetCol(column).ToArg(value))
	}

	if v, ok := update.PropertyAddress.Get(); ok {
		set("property_address", v)
	}
	if v, ok := update.ClientName.Get(); ok {
		set("client_name", v)
	}
	if v, ok := update.ClientEmail.Get(); ok {
		set("client_email", v)
	}
	if v, ok := update.Type.Get(); ok {
		set("transaction_type", string(v))
	}
	if v, ok := update.ContractDate.Get(); ok {
		set("contract_date", v)
	}
	if v, ok := update.ListPrice.Get(); ok {
		set("list_price", v)
	}
	if s, ok := update.Schedule.Get(); ok {
		set("option_period_end", s.OptionPeriodEnd)
		set("inspection_date", s.InspectionDate)
		set("appraisal_date", s.AppraisalDate)
		set("financing_deadline", s.FinancingDeadline)
		set("closing_date", s.ClosingDate)
	}
	if v, ok := update.Overrides.Get(); ok {
		if v == nil {
			v = deadline.Overrides{}
		}
		set("overrides", v)
	}
	if v, ok := update.Notes.Get(); ok {
		set("notes", v)
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

// Delete removes a transaction. Its reminder deliveries cascade.
func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	query := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	result, err := bob.Exec(ctx, w.exec, query)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
