package billing

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/handlers"
)

type CheckoutResponse struct {
	URL string `json:"url" doc:"Hosted checkout page to redirect the user to"`
}

type CheckoutOutput struct {
	Body CheckoutResponse
}

type checkoutStarter interface {
	Checkout(ctx context.Context, userID uuid.UUID) (string, error)
}

// CheckoutHandler handles POST /v1/billing/checkout.
type CheckoutHandler struct {
	BillingService checkoutStarter
}

func NewCheckoutHandler(svc checkoutStarter) *CheckoutHandler {
	return &CheckoutHandler{BillingService: svc}
}

func (h *CheckoutHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-checkout",
		Method:      http.MethodPost,
		Path:        "/v1/billing/checkout",
		Summary:     "Start subscription checkout",
		Tags:        []string{"Billing"},
		Security:    auth.BearerSecurity,
	}, h.handle)
}

func (h *CheckoutHandler) handle(ctx context.Context, _ *struct{}) (*CheckoutOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	url, err := h.BillingService.Checkout(ctx, userID)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to start checkout")
	}
	return &CheckoutOutput{Body: CheckoutResponse{URL: url}}, nil
}
