package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/storage/user"
)

const (
	// SecurityScheme is the name of the bearer scheme in the OpenAPI document.
	SecurityScheme = "bearer"
	// RequiresSubscription marks an operation (via Operation.Metadata) as subscription-gated.
	RequiresSubscription = "requiresSubscription"
)

// BearerSecurity is the Operation.Security value for authenticated endpoints.
var BearerSecurity = []map[string][]string{{SecurityScheme: {}}}

type userIDKey struct{}

// UserID returns the authenticated user for the request.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// WithUserID stores an authenticated user on a context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

type tokenVerifier interface {
	Verify(token string) (uuid.UUID, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type subscriptionPolicy interface {
	Allows(u *user.User, now time.Time) bool
}

// Middleware enforces bearer tokens on operations that declare BearerSecurity and the
// subscription gate on operations marked RequiresSubscription.
type Middleware struct {
	API    huma.API
	Tokens tokenVerifier
	Users  userFinder
	Policy subscriptionPolicy
	Now    func() time.Time
}

func (m *Middleware) Handle(ctx huma.Context, next func(huma.Context)) {
	op := ctx.Operation()
	if op == nil || !requiresBearer(op) {
		next(ctx)
		return
	}

	token, ok := bearerToken(ctx.Header("Authorization"))
	if !ok {
		_ = huma.WriteErr(m.API, ctx, http.StatusUnauthorized, "missing bearer token")
		return
	}
	userID, err := m.Tokens.Verify(token)
	if err != nil {
		_ = huma.WriteErr(m.API, ctx, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	if gated, _ := op.Metadata[RequiresSubscription].(bool); gated {
		u, err := m.Users.FindByID(ctx.Context(), userID)
		if errors.Is(err, user.ErrNotFound) {
			_ = huma.WriteErr(m.API, ctx, http.StatusUnauthorized, "unknown user")
			return
		}
		if err != nil {
			_ = huma.WriteErr(m.API, ctx, http.StatusInternalServerError, "failed to load user", err)
			return
		}
		if !m.Policy.Allows(u, m.now()) {
			_ = huma.WriteErr(m.API, ctx, http.StatusPaymentRequired, "subscription required")
			return
		}
	}

	next(huma.WithValue(ctx, userIDKey{}, userID))
}

func (m *Middleware) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func requiresBearer(op *huma.Operation) bool {
	for _, requirement := range op.Security {
		if _, ok := requirement[SecurityScheme]; ok {
			return true
		}
	}
	return false
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
