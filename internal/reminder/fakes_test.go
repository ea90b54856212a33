package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/deadline"
	"github.com/carson-networks/deadline-server/internal/notify"
	"github.com/carson-networks/deadline-server/internal/storage/delivery"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type fakeTransactions struct {
	items []*transaction.Transaction
	err   error
}

func (f *fakeTransactions) ListOpen(_ context.Context, onOrAfter time.Time) ([]*transaction.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var open []*transaction.Transaction
	for _, tx := range f.items {
		if stillOpen(tx, onOrAfter) {
			open = append(open, tx)
		}
	}
	return open, nil
}

// stillOpen mirrors the ListOpen predicate: the stored closing date or any override date
// is on or after the cutoff.
func stillOpen(tx *transaction.Transaction, onOrAfter time.Time) bool {
	if !tx.Schedule.ClosingDate.Before(onOrAfter) {
		return true
	}
	for _, d := range tx.Overrides {
		if !d.Before(onOrAfter) {
			return true
		}
	}
	return false
}

type fakeUsers struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*user.User
	lookups int
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type fakeLedger struct {
	mu   sync.Mutex
	rows map[delivery.Key]*delivery.Delivery
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: make(map[delivery.Key]*delivery.Delivery)}
}

func (f *fakeLedger) Claim(_ context.Context, key delivery.Key) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = &delivery.Delivery{Key: key, Status: delivery.StatusClaimed}
	return true, nil
}

func (f *fakeLedger) MarkSent(_ context.Context, key delivery.Key, messageID string, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[key]
	if !ok {
		return errors.New("no claim")
	}
	row.Status = delivery.StatusSent
	row.MessageID = messageID
	row.SentAt = &sentAt
	return nil
}

func (f *fakeLedger) Release(_ context.Context, key delivery.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[key]; ok && row.Status == delivery.StatusClaimed {
		delete(f.rows, key)
	}
	return nil
}

func (f *fakeLedger) ListByTransaction(_ context.Context, transactionID uuid.UUID) ([]*delivery.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*delivery.Delivery
	for key, row := range f.rows {
		if key.TransactionID == transactionID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (f *fakeLedger) status(key delivery.Key) (delivery.Status, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[key]
	if !ok {
		return "", false
	}
	return row.Status, true
}

type fakeSender struct {
	mu          sync.Mutex
	sent        []notify.Message
	failSubject string
	block       bool
	uninit      bool
}

func (f *fakeSender) Initialized() bool {
	return !f.uninit
}

func (f *fakeSender) Send(ctx context.Context, msg notify.Message) (notify.Receipt, error) {
	if f.block {
		<-ctx.Done()
		return notify.Receipt{}, ctx.Err()
	}
	if f.failSubject != "" && strings.Contains(msg.Subject, f.failSubject) {
		return notify.Receipt{}, errors.New("smtp: 451 try again later")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return notify.Receipt{MessageID: uuid.Must(uuid.NewV4()).String()}, nil
}

func (f *fakeSender) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message(nil), f.sent...)
}

func date(s string) time.Time {
	d, err := deadline.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTransaction(owner *user.User, address, contract string) *transaction.Transaction {
	schedule, err := deadline.Calculate(date(contract), time.Time{}, deadline.TransactionTypePurchase)
	if err != nil {
		panic(err)
	}
	return &transaction.Transaction{
		ID:              uuid.Must(uuid.NewV4()),
		UserID:          owner.ID,
		PropertyAddress: address,
		ClientName:      "Jordan Client",
		ClientEmail:     "client@example.com",
		Type:            deadline.TransactionTypePurchase,
		ContractDate:    date(contract),
		Schedule:        schedule,
		Overrides:       deadline.Overrides{},
	}
}

func activeUser() *user.User {
	return &user.User{
		ID:                 uuid.Must(uuid.NewV4()),
		Email:              "agent@example.com",
		SubscriptionStatus: user.SubscriptionActive,
	}
}
