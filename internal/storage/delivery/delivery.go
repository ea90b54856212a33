package delivery

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/deadline-server/internal/deadline"
)

const tableName = "reminder_deliveries"

// Status is the persisted state of one reminder.
type Status string

const (
	StatusClaimed Status = "claimed"
	StatusSent    Status = "sent"
)

// Key identifies one reminder: a milestone of a transaction at a specific effective date.
type Key struct {
	TransactionID uuid.UUID
	Milestone     deadline.Milestone
	EffectiveDate time.Time
}

// Delivery is a reminder_deliveries record.
type Delivery struct {
	Key
	Status    Status
	MessageID string
	ClaimedAt time.Time
	SentAt    *time.Time
}

// ILedger records which reminders have been claimed and sent.
type ILedger interface {
	Claim(ctx context.Context, key Key) (bool, error)
	MarkSent(ctx context.Context, key Key, messageID string, sentAt time.Time) error
	Release(ctx context.Context, key Key) error
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*Delivery, error)
}

var _ ILedger = (*Ledger)(nil)

// Ledger is the Postgres implementation of ILedger. Each call commits on its own so a
// claim is visible to concurrent scans before the notification goes out.
type Ledger struct {
	exec bob.Executor
}

func NewLedger(exec bob.Executor) *Ledger {
	return &Ledger{exec: exec}
}

// Claim inserts a claimed row. It reports false when the key already exists.
func (l *Ledger) Claim(ctx context.Context, key Key) (bool, error) {
	query := psql.Insert(
		im.Into(tableName, "transaction_id", "milestone", "effective_date", "status"),
		im.Values(psql.Arg(
			key.TransactionID,
			string(key.Milestone),
			deadline.Normalize(key.EffectiveDate),
			string(StatusClaimed),
		)),
		im.OnConflict("transaction_id", "milestone", "effective_date").DoNothing(),
	)
	result, err := bob.Exec(ctx, l.exec, query)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (l *Ledger) MarkSent(ctx context.Context, key Key, messageID string, sentAt time.Time) error {
	query := psql.Update(
		um.Table(tableName),
		um.SetCol("status").ToArg(string(StatusSent)),
		um.SetCol("message_id").ToArg(messageID),
		um.SetCol("sent_at").ToArg(sentAt),
		um.Where(psql.Quote("transaction_id").EQ(psql.Arg(key.TransactionID))),
		um.Where(psql.Quote("milestone").EQ(psql.Arg(string(key.Milestone)))),
		um.Where(psql.Quote("effective_date").EQ(psql.Arg(deadline.Normalize(key.EffectiveDate)))),
	)
	_, err := bob.Exec(ctx, l.exec, query)
	return err
}

// Release drops a claim whose send failed so a later pass may try again.
func (l *Ledger) Release(ctx context.Context, key Key) error {
	query := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("transaction_id").EQ(psql.Arg(key.TransactionID))),
		dm.Where(psql.Quote("milestone").EQ(psql.Arg(string(key.Milestone)))),
		dm.Where(psql.Quote("effective_date").EQ(psql.Arg(deadline.Normalize(key.EffectiveDate)))),
		dm.Where(psql.Quote("status").EQ(psql.Arg(string(StatusClaimed)))),
	)
	_, err := bob.Exec(ctx, l.exec, query)
	return err
}

func (l *Ledger) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*Delivery, error) {
	query := psql.Select(
		sm.Columns("transaction_id", "milestone", "effective_date", "status", "message_id", "claimed_at", "sent_at"),
		sm.From(tableName),
		sm.Where(psql.Quote("transaction_id").EQ(psql.Arg(transactionID))),
		sm.OrderBy(psql.Quote("effective_date")).Asc(),
	)
	rows, err := bob.All(ctx, l.exec, query, scan.StructMapper[deliveryRow]())
	if err != nil {
		return nil, err
	}

	result := make([]*Delivery, len(rows))
	for i, row := range rows {
		d := &Delivery{
			Key: Key{
				TransactionID: row.TransactionID,
				Milestone:     deadline.Milestone(row.Milestone),
				EffectiveDate: deadline.Normalize(row.EffectiveDate),
			},
			Status:    Status(row.Status),
			MessageID: row.MessageID,
			ClaimedAt: row.ClaimedAt,
		}
		if row.SentAt.Valid {
			sentAt := row.SentAt.Time
			d.SentAt = &sentAt
		}
		result[i] = d
	}
	return result, nil
}

type deliveryRow struct {
	TransactionID uuid.UUID    `db:"transaction_id"`
	Milestone     string       `db:"milestone"`
	EffectiveDate time.Time    `db:"effective_date"`
	Status        string       `db:"status"`
	MessageID     string       `db:"message_id"`
	ClaimedAt     time.Time    `db:"claimed_at"`
	SentAt        sql.NullTime `db:"sent_at"`
}
