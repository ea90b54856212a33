// Package handlertest builds humatest APIs with an authenticated caller.
package handlertest

import (
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
)

// NewAPI returns a test API whose requests run as userID. A nil userID leaves requests
// unauthenticated.
func NewAPI(t *testing.T, userID uuid.UUID) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	if userID != uuid.Nil {
		api.UseMiddleware(func(ctx huma.Context, next func(huma.Context)) {
			next(huma.WithContext(ctx, auth.WithUserID(ctx.Context(), userID)))
		})
	}
	return api
}
