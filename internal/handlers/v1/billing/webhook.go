package billing

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/deadline-server/internal/handlers"
)

// WebhookInput keeps the raw payload so the signature can be verified byte for byte.
type WebhookInput struct {
	Signature string `header:"Stripe-Signature" doc:"Stripe webhook signature"`
	RawBody   []byte
}

type webhookHandler interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// WebhookHandler handles POST /v1/billing/webhook.
type WebhookHandler struct {
	BillingService webhookHandler
}

func NewWebhookHandler(svc webhookHandler) *WebhookHandler {
	return &WebhookHandler{BillingService: svc}
}

func (h *WebhookHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "billing-webhook",
		Method:        http.MethodPost,
		Path:          "/v1/billing/webhook",
		Summary:       "Stripe webhook",
		Tags:          []string{"Billing"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *WebhookHandler) handle(ctx context.Context, input *WebhookInput) (*struct{}, error) {
	if err := h.BillingService.HandleWebhook(ctx, input.RawBody, input.Signature); err != nil {
		return nil, handlers.ServiceError(err, "failed to apply webhook")
	}
	return nil, nil
}
