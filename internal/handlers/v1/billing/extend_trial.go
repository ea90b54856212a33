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

type trialExtender interface {
	ExtendTrial(ctx context.Context, userID uuid.UUID) (*service.Subscription, error)
}

// ExtendTrialHandler handles POST /v1/billing/trial/extend.
type ExtendTrialHandler struct {
	BillingService trialExtender
}

func NewExtendTrialHandler(svc trialExtender) *ExtendTrialHandler {
	return &ExtendTrialHandler{BillingService: svc}
}

func (h *ExtendTrialHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "extend-trial",
		Method:      http.MethodPost,
		Path:        "/v1/billing/trial/extend",
		Summary:     "Extend trial",
		Description: "Extends the trial from 15 to 22 days. Allowed once per user.",
		Tags:        []string{"Billing"},
		Security:    auth.BearerSecurity,
	}, h.handle)
}

func (h *ExtendTrialHandler) handle(ctx context.Context, _ *struct{}) (*SubscriptionOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	sub, err := h.BillingService.ExtendTrial(ctx, userID)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to extend trial")
	}
	return &SubscriptionOutput{Body: subscriptionFrom(sub)}, nil
}
