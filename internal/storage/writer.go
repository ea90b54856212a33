package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/deadline-server/internal/storage/transaction"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

// TxFinisher ends a database transaction.
type TxFinisher interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Writer struct {
	tx           TxFinisher
	Transactions transaction.ITransactionWriter
	Users        user.IUserWriter
}

func NewWriter(tx bob.Tx) *Writer {
	exec := &tx
	return &Writer{
		tx:           exec,
		Transactions: transaction.NewWriter(exec),
		Users:        user.NewWriter(exec),
	}
}

// NewWriterWithTables assembles a Writer from explicit parts.
func NewWriterWithTables(tx TxFinisher, transactions transaction.ITransactionWriter, users user.IUserWriter) *Writer {
	return &Writer{
		tx:           tx,
		Transactions: transactions,
		Users:        users,
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
