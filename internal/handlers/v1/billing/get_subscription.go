package billing

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/service"
)

type subscriptionGetter interface {
	GetSubscription(ctx context.Context, userID uuid.UUID) (*service.Subscription, error)
}

// GetSubscriptionHandler handles GET /v1/billing/subscription.
type GetSubscriptionHandler struct {
	BillingService subscriptionGetter
}

func NewGetSubscriptionHandler(svc subscriptionGetter) *GetSubscriptionHandler {
	return &GetSubscriptionHandler{BillingService: svc}
}

func (h *GetSubscriptionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-subscription",
		Method:      http.MethodGet,
		Path:        "/v1/billing/subscription",
		Summary:     "Subscription status",
		Tags:        []string{"Billing"},
		Security:    auth.BearerSecurity,
	}, h.handle)
}

func (h *GetSubscriptionHandler) handle(ctx context.Context, _ *struct{}) (*SubscriptionOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := h.BillingService.GetSubscription(ctx, userID)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to load subscription")
	}
	return &SubscriptionOutput{Body: subscriptionFrom(sub)}, nil
}
