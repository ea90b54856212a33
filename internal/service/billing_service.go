package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/deadline-server/internal/billing"
	"github.com/carson-networks/deadline-server/internal/operator/actions"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type paymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (string, error)
	ParseWebhook(payload []byte, signature string) (*billing.Event, error)
}

// Subscription is a user's billing state at a point in time.
type Subscription struct {
	State            billing.State
	TrialEndsAt      time.Time
	TrialExtended    bool
	CanExtendTrial   bool
	RemindersEnabled bool
}

// BillingService applies the trial policy and talks to the payment provider.
type BillingService struct {
	users    userFinder
	operator processor
	gateway  paymentGateway
	policy   billing.Policy
	logger   *logrus.Logger
	now      func() time.Time
}

func NewBillingService(users userFinder, op processor, gateway paymentGateway, policy billing.Policy, logger *logrus.Logger) *BillingService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BillingService{
		users:    users,
		operator: op,
		gateway:  gateway,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *BillingService) GetSubscription(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sub := s.summarize(u)
	return &sub, nil
}

// ExtendTrial grants the one-time extension from 15 to 22 days.
func (s *BillingService) ExtendTrial(ctx context.Context, userID uuid.UUID) (*Subscription, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanExtendTrial(u) {
		return nil, ErrTrialAlreadyExtended
	}

	err = s.operator.Process(ctx, &actions.ExtendTrial{UserID: userID})
	if errors.Is(err, actions.ErrTrialNotExtendable) {
		return nil, ErrTrialAlreadyExtended
	}
	if err != nil {
		return nil, fmt.Errorf("extend trial: %w", err)
	}

	u.TrialExtended = true
	sub := s.summarize(u)
	return &sub, nil
}

// Checkout starts a hosted checkout session and returns its URL.
func (s *BillingService) Checkout(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		UserID:     u.ID.String(),
		Email:      u.Email,
		CustomerID: u.StripeCustomerID,
	})
	if err != nil {
		return "", errors.Join(ErrBillingUnavailable, err)
	}
	return url, nil
}

// HandleWebhook applies a verified payment provider event.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.gateway.ParseWebhook(payload, signature)
	if errors.Is(err, billing.ErrNotConfigured) {
		return ErrBillingUnavailable
	}
	if err != nil {
		return invalid("Stripe-Signature", err)
	}

	var action *actions.UpdateSubscription
	switch event.Kind {
	case billing.EventCheckoutCompleted:
		userID, err := uuid.FromString(event.UserID)
		if err != nil {
			return invalid("client_reference_id", err)
		}
		action = &actions.UpdateSubscription{
			UserID:           userID,
			StripeCustomerID: event.CustomerID,
			Status:           user.SubscriptionActive,
		}
	case billing.EventSubscriptionCancelled:
		if event.CustomerID == "" {
			return invalid("customer", nil)
		}
		action = &actions.UpdateSubscription{
			StripeCustomerID: event.CustomerID,
			Status:           user.SubscriptionExpired,
		}
	default:
		return nil
	}

	err = s.operator.Process(ctx, action)
	if errors.Is(err, user.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"event":      string(event.Kind),
		"customerID": event.CustomerID,
		"status":     string(action.Status),
	}).Info("Billing.Webhook.Applied")
	return nil
}

func (s *BillingService) findUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *BillingService) summarize(u *user.User) Subscription {
	now := s.now()
	return Subscription{
		State:            s.policy.Evaluate(u, now),
		TrialEndsAt:      s.policy.TrialEndsAt(u),
		TrialExtended:    u.TrialExtended,
		CanExtendTrial:   s.policy.CanExtendTrial(u),
		RemindersEnabled: s.policy.RemindersEnabled(u, now),
	}
}
