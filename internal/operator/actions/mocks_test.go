package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/deadline-server/internal/storage"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type mockTransactionWriter struct {
	mock.Mock
}

func (m *mockTransactionWriter) FindByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*transaction.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactionWriter) ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID)
	txs, _ := args.Get(0).([]*transaction.Transaction)
	return txs, args.Error(1)
}

func (m *mockTransactionWriter) ListOpen(ctx context.Context, onOrAfter time.Time) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, onOrAfter)
	txs, _ := args.Get(0).([]*transaction.Transaction)
	return txs, args.Error(1)
}

func (m *mockTransactionWriter) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*transaction.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactionWriter) Insert(ctx context.Context, create *transaction.TransactionCreate) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockTransactionWriter) Update(ctx context.Context, id uuid.UUID, update *transaction.TransactionUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *mockTransactionWriter) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserWriter struct {
	mock.Mock
}

func (m *mockUserWriter) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserWriter) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserWriter) FindByStripeCustomerID(ctx context.Context, customerID string) (*user.User, error) {
	args := m.Called(ctx, customerID)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserWriter) Insert(ctx context.Context, create *user.UserCreate) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockUserWriter) UpdateSubscription(ctx context.Context, id uuid.UUID, update *user.SubscriptionUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *mockUserWriter) MarkTrialExtended(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type noopTx struct{}

func (noopTx) Commit(context.Context) error   { return nil }
func (noopTx) Rollback(context.Context) error { return nil }

func newTestWriter() (*storage.Writer, *mockTransactionWriter, *mockUserWriter) {
	transactions := &mockTransactionWriter{}
	users := &mockUserWriter{}
	return storage.NewWriterWithTables(noopTx{}, transactions, users), transactions, users
}
