package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/deadline-server/internal/billing"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type stubUsers map[uuid.UUID]*user.User

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type whoAmIOutput struct {
	Body struct {
		UserID string `json:"userID"`
	}
}

func newMiddlewareTestAPI(t *testing.T, users stubUsers, now time.Time) (humatest.TestAPI, *TokenIssuer) {
	t.Helper()
	tokens := NewTokenIssuer("secret", time.Hour).WithClock(func() time.Time { return now })

	_, api := humatest.New(t)
	mw := &Middleware{API: api, Tokens: tokens, Users: users, Policy: billing.DefaultPolicy(), Now: func() time.Time { return now }}
	api.UseMiddleware(mw.Handle)

	handler := func(ctx context.Context, _ *struct{}) (*whoAmIOutput, error) {
		out := &whoAmIOutput{}
		if id, ok := UserID(ctx); ok {
			out.Body.UserID = id.String()
		}
		return out, nil
	}
	huma.Register(api, huma.Operation{OperationID: "open", Method: http.MethodGet, Path: "/open"}, handler)
	huma.Register(api, huma.Operation{OperationID: "authed", Method: http.MethodGet, Path: "/authed", Security: BearerSecurity}, handler)
	huma.Register(api, huma.Operation{
		OperationID: "gated",
		Method:      http.MethodGet,
		Path:        "/gated",
		Security:    BearerSecurity,
		Metadata:    map[string]any{RequiresSubscription: true},
	}, handler)
	return api, tokens
}

func TestMiddleware_OpenOperation(t *testing.T) {
	api, _ := newMiddlewareTestAPI(t, stubUsers{}, time.Now())

	resp := api.Get("/open")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMiddleware_MissingToken(t *testing.T) {
	api, _ := newMiddlewareTestAPI(t, stubUsers{}, time.Now())

	resp := api.Get("/authed")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMiddleware_InvalidToken(t *testing.T) {
	api, _ := newMiddlewareTestAPI(t, stubUsers{}, time.Now())

	resp := api.Get("/authed", "Authorization: Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestMiddleware_ValidToken(t *testing.T) {
	now := time.Now()
	userID := uuid.Must(uuid.NewV4())
	api, tokens := newMiddlewareTestAPI(t, stubUsers{}, now)
	token, _, err := tokens.Issue(userID)
	require.NoError(t, err)

	resp := api.Get("/authed", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), userID.String())
}

func TestMiddleware_SubscriptionGate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	trialUser := &user.User{ID: uuid.Must(uuid.NewV4()), SubscriptionStatus: user.SubscriptionTrial, TrialStartedAt: now.AddDate(0, 0, -3)}
	lapsedUser := &user.User{ID: uuid.Must(uuid.NewV4()), SubscriptionStatus: user.SubscriptionTrial, TrialStartedAt: now.AddDate(0, 0, -30)}
	users := stubUsers{trialUser.ID: trialUser, lapsedUser.ID: lapsedUser}

	api, tokens := newMiddlewareTestAPI(t, users, now)

	token, _, err := tokens.Issue(trialUser.ID)
	require.NoError(t, err)
	resp := api.Get("/gated", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	token, _, err = tokens.Issue(lapsedUser.ID)
	require.NoError(t, err)
	resp = api.Get("/gated", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusPaymentRequired, resp.Code)

	token, _, err = tokens.Issue(uuid.Must(uuid.NewV4()))
	require.NoError(t, err)
	resp = api.Get("/gated", "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
