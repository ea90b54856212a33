package account

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/service"
)

type SubscriptionSummary struct {
	State       string `json:"state" enum:"trial,active,expired" doc:"Effective subscription state"`
	TrialEndsAt string `json:"trialEndsAt" doc:"RFC3339 end of the trial"`
}

type MeResponse struct {
	ID           string              `json:"id" doc:"User UUID"`
	Email        string              `json:"email" doc:"Login email"`
	Name         string              `json:"name" doc:"Display name"`
	Subscription SubscriptionSummary `json:"subscription"`
}

type MeOutput struct {
	Body MeResponse
}

type accountGetter interface {
	Me(ctx context.Context, userID uuid.UUID) (*service.Account, error)
}

// MeHandler handles GET /v1/auth/me.
type MeHandler struct {
	UserService accountGetter
}

func NewMeHandler(svc accountGetter) *MeHandler {
	return &MeHandler{UserService: svc}
}

func (h *MeHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/v1/auth/me",
		Summary:     "Current user",
		Tags:        []string{"Auth"},
		Security:    auth.BearerSecurity,
	}, h.handle)
}

func (h *MeHandler) handle(ctx context.Context, _ *struct{}) (*MeOutput, error) {
	userID, err := handlers.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	account, err := h.UserService.Me(ctx, userID)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to load user")
	}

	return &MeOutput{Body: MeResponse{
		ID:    account.ID.String(),
		Email: account.Email,
		Name:  account.Name,
		Subscription: SubscriptionSummary{
			State:       string(account.Subscription.State),
			TrialEndsAt: account.Subscription.TrialEndsAt.UTC().Format(time.RFC3339),
		},
	}}, nil
}
