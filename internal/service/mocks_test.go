package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/deadline-server/internal/billing"
	"github.com/carson-networks/deadline-server/internal/operator/actions"
	"github.com/carson-networks/deadline-server/internal/reminder"
	"github.com/carson-networks/deadline-server/internal/storage/transaction"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Process(ctx context.Context, action actions.IAction) error {
	return m.Called(ctx, action).Error(0)
}

type mockTransactionReader struct {
	mock.Mock
}

func (m *mockTransactionReader) FindByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	tx, _ := args.Get(0).(*transaction.Transaction)
	return tx, args.Error(1)
}

func (m *mockTransactionReader) ListByUser(ctx context.Context, userID uuid.UUID) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID)
	txs, _ := args.Get(0).([]*transaction.Transaction)
	return txs, args.Error(1)
}

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *mockUserReader) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Issue(userID uuid.UUID) (string, time.Time, error) {
	args := m.Called(userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	args := m.Called(payload, signature)
	event, _ := args.Get(0).(*billing.Event)
	return event, args.Error(1)
}

type mockScanner struct {
	mock.Mock
}

func (m *mockScanner) Scan(ctx context.Context) (reminder.Summary, error) {
	args := m.Called(ctx)
	return args.Get(0).(reminder.Summary), args.Error(1)
}

func (m *mockScanner) SenderInitialized() bool {
	return m.Called().Bool(0)
}

type staticAutomation bool

func (a staticAutomation) Running() bool { return bool(a) }
