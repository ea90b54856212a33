package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"
)

var ErrNotConfigured = errors.New("billing provider is not configured")

// EventKind is the subset of Stripe webhook events the service acts on.
type EventKind string

const (
	EventIgnored               EventKind = ""
	EventCheckoutCompleted     EventKind = "checkout.session.completed"
	EventSubscriptionCancelled EventKind = "customer.subscription.deleted"
)

// Event is a verified, decoded webhook notification.
type Event struct {
	Kind       EventKind
	UserID     string
	CustomerID string
}

// CheckoutRequest describes the user starting a subscription.
type CheckoutRequest struct {
	UserID     string
	Email      string
	CustomerID string
}

// StripeGateway creates checkout sessions and verifies webhooks.
type StripeGateway struct {
	api           *client.API
	priceID       string
	webhookSecret string
	baseURL       string
}

func NewStripeGateway(secretKey, webhookSecret, priceID, baseURL string) *StripeGateway {
	g := &StripeGateway{
		priceID:       priceID,
		webhookSecret: webhookSecret,
		baseURL:       baseURL,
	}
	if secretKey != "" {
		g.api = &client.API{}
		g.api.Init(secretKey, nil)
	}
	return g
}

func (g *StripeGateway) Configured() bool {
	return g.api != nil && g.priceID != ""
}

// CreateCheckoutSession returns the hosted checkout URL for a monthly subscription.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(g.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(req.UserID),
		SuccessURL:        stripe.String(g.baseURL + "/billing/success"),
		CancelURL:         stripe.String(g.baseURL + "/billing/cancel"),
	}
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	} else {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return session.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the events the service handles.
// Unhandled event types come back as EventIgnored.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify webhook: %w", err)
	}

	switch EventKind(event.Type) {
	case EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		result := &Event{Kind: EventCheckoutCompleted, UserID: session.ClientReferenceID}
		if session.Customer != nil {
			result.CustomerID = session.Customer.ID
		}
		return result, nil
	case EventSubscriptionCancelled:
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return nil, fmt.Errorf("decode subscription: %w", err)
		}
		result := &Event{Kind: EventSubscriptionCancelled}
		if subscription.Customer != nil {
			result.CustomerID = subscription.Customer.ID
		}
		return result, nil
	}
	return &Event{Kind: EventIgnored}, nil
}
