package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/deadline-server/internal/billing"
	"github.com/carson-networks/deadline-server/internal/logging"
	"github.com/carson-networks/deadline-server/internal/operator/actions"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type billingFixture struct {
	svc     *BillingService
	users   *mockUserReader
	op      *mockProcessor
	gateway *mockGateway
	now     time.Time
}

func newBillingTestService(t *testing.T) *billingFixture {
	t.Helper()
	f := &billingFixture{
		users:   &mockUserReader{},
		op:      &mockProcessor{},
		gateway: &mockGateway{},
		now:     time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewBillingService(f.users, f.op, f.gateway, billing.DefaultPolicy(), logging.NewLogger(io.Discard))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func trialUser(started time.Time, extended bool) *user.User {
	return &user.User{
		ID:                 uuid.Must(uuid.NewV4()),
		Email:              "agent@example.com",
		SubscriptionStatus: user.SubscriptionTrial,
		TrialStartedAt:     started,
		TrialExtended:      extended,
	}
}

func TestGetSubscription(t *testing.T) {
	f := newBillingTestService(t)
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	u := trialUser(started, false)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	sub, err := f.svc.GetSubscription(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.StateTrial, sub.State)
	assert.Equal(t, started.AddDate(0, 0, 15), sub.TrialEndsAt)
	assert.True(t, sub.RemindersEnabled)
}

func TestExtendTrial_Once(t *testing.T) {
	f := newBillingTestService(t)
	started := time.Date(2024, 2, 20, 12, 0, 0, 0, time.UTC)
	u := trialUser(started, false)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil).Once()
	f.op.On("Process", mock.Anything, &actions.ExtendTrial{UserID: u.ID}).Return(nil)

	sub, err := f.svc.ExtendTrial(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, sub.TrialExtended)
	assert.Equal(t, started.AddDate(0, 0, 22), sub.TrialEndsAt)
	assert.Equal(t, billing.StateTrial, sub.State)

	extended := trialUser(started, true)
	f.users.On("FindByID", mock.Anything, u.ID).Return(extended, nil).Once()
	_, err = f.svc.ExtendTrial(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrTrialAlreadyExtended)
	f.op.AssertNumberOfCalls(t, "Process", 1)
}

func TestExtendTrial_LostRace(t *testing.T) {
	f := newBillingTestService(t)
	u := trialUser(f.now, false)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.op.On("Process", mock.Anything, mock.Anything).Return(actions.ErrTrialNotExtendable)

	_, err := f.svc.ExtendTrial(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrTrialAlreadyExtended)
}

func TestCheckout(t *testing.T) {
	f := newBillingTestService(t)
	u := trialUser(f.now, false)
	u.StripeCustomerID = "cus_123"
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.gateway.On("CreateCheckoutSession", mock.Anything, billing.CheckoutRequest{
		UserID:     u.ID.String(),
		Email:      u.Email,
		CustomerID: "cus_123",
	}).Return("https://checkout.stripe.com/c/pay/cs_test", nil)

	url, err := f.svc.Checkout(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test", url)
}

func TestCheckout_ProviderFailure(t *testing.T) {
	f := newBillingTestService(t)
	u := trialUser(f.now, false)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return("", billing.ErrNotConfigured)

	_, err := f.svc.Checkout(context.Background(), u.ID)
	assert.ErrorIs(t, err, ErrBillingUnavailable)
	assert.ErrorIs(t, err, billing.ErrNotConfigured)
}

func TestHandleWebhook_CheckoutCompleted(t *testing.T) {
	f := newBillingTestService(t)
	userID := uuid.Must(uuid.NewV4())
	payload := []byte(`{}`)
	f.gateway.On("ParseWebhook", payload, "sig").Return(&billing.Event{
		Kind:       billing.EventCheckoutCompleted,
		UserID:     userID.String(),
		CustomerID: "cus_123",
	}, nil)
	f.op.On("Process", mock.Anything, &actions.UpdateSubscription{
		UserID:           userID,
		StripeCustomerID: "cus_123",
		Status:           user.SubscriptionActive,
	}).Return(nil)

	require.NoError(t, f.svc.HandleWebhook(context.Background(), payload, "sig"))
	f.op.AssertExpectations(t)
}

func TestHandleWebhook_SubscriptionCancelled(t *testing.T) {
	f := newBillingTestService(t)
	f.gateway.On("ParseWebhook", mock.Anything, mock.Anything).Return(&billing.Event{
		Kind:       billing.EventSubscriptionCancelled,
		CustomerID: "cus_123",
	}, nil)
	f.op.On("Process", mock.Anything, &actions.UpdateSubscription{
		StripeCustomerID: "cus_123",
		Status:           user.SubscriptionExpired,
	}).Return(user.ErrNotFound)

	assert.ErrorIs(t, f.svc.HandleWebhook(context.Background(), nil, ""), ErrNotFound)
}

func TestHandleWebhook_IgnoredAndInvalid(t *testing.T) {
	f := newBillingTestService(t)
	f.gateway.On("ParseWebhook", []byte("ignored"), mock.Anything).Return(&billing.Event{Kind: billing.EventIgnored}, nil)
	f.gateway.On("ParseWebhook", []byte("forged"), mock.Anything).Return(nil, errors.New("signature mismatch"))
	f.gateway.On("ParseWebhook", []byte("unconfigured"), mock.Anything).Return(nil, billing.ErrNotConfigured)

	assert.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("ignored"), "sig"))
	assert.ErrorIs(t, f.svc.HandleWebhook(context.Background(), []byte("forged"), "sig"), ErrValidation)
	assert.ErrorIs(t, f.svc.HandleWebhook(context.Background(), []byte("unconfigured"), "sig"), ErrBillingUnavailable)
	f.op.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}
