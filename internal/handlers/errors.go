package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/service"
)

// ServiceError maps a service error onto the HTTP status the caller should see. Anything
// unrecognised is reported as a generic failure with the given message.
func ServiceError(err error, failure string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		msg := "validation failed"
		if field := service.ValidationField(err); field != "" {
			msg = "invalid " + field
		}
		return huma.NewError(http.StatusBadRequest, msg, err)
	case errors.Is(err, service.ErrUnauthorized):
		return huma.NewError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrNotFound):
		return huma.NewError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrDuplicateEmail):
		return huma.NewError(http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrTrialAlreadyExtended):
		return huma.NewError(http.StatusConflict, "trial already extended")
	case errors.Is(err, service.ErrBillingUnavailable):
		return huma.NewError(http.StatusBadGateway, "billing provider unavailable")
	}
	return huma.NewError(http.StatusInternalServerError, failure, err)
}

// CurrentUser returns the authenticated user or a 401.
func CurrentUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := auth.UserID(ctx)
	if !ok {
		return uuid.Nil, huma.NewError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
