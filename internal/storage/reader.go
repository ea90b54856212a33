package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/deadline-server/internal/storage/transaction"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type Reader struct {
	Transactions *transaction.Reader
	Users        *user.Reader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Transactions: transaction.NewReader(exec),
		Users:        user.NewReader(exec),
	}
}
