package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/storage"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

// ExtendTrial grants the one-time trial extension.
type ExtendTrial struct {
	UserID uuid.UUID
}

func (e *ExtendTrial) Perform(ctx context.Context, writer *storage.Writer) error {
	u, err := writer.Users.FindByID(ctx, e.UserID)
	if err != nil {
		return err
	}
	if u.SubscriptionStatus != user.SubscriptionTrial {
		return ErrTrialNotExtendable
	}

	extended, err := writer.Users.MarkTrialExtended(ctx, e.UserID)
	if err != nil {
		return err
	}
	if !extended {
		return ErrTrialNotExtendable
	}
	return nil
}

// UpdateSubscription records a billing state change reported by the payment provider.
// The user is addressed by ID when known, otherwise by Stripe customer ID.
type UpdateSubscription struct {
	UserID           uuid.UUID
	StripeCustomerID string
	Status           user.SubscriptionStatus
}

func (s *UpdateSubscription) Perform(ctx context.Context, writer *storage.Writer) error {
	userID := s.UserID
	if userID == uuid.Nil {
		u, err := writer.Users.FindByStripeCustomerID(ctx, s.StripeCustomerID)
		if err != nil {
			return err
		}
		userID = u.ID
	}

	return writer.Users.UpdateSubscription(ctx, userID, &user.SubscriptionUpdate{
		Status:           s.Status,
		StripeCustomerID: s.StripeCustomerID,
	})
}
