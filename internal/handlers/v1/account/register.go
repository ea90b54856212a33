package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/service"
)

type RegisterBody struct {
	Email    string `json:"email" format:"email" doc:"Login email"`
	Password string `json:"password" minLength:"8" doc:"Password, at least 8 characters"`
	Name     string `json:"name,omitempty" doc:"Display name"`
}

type RegisterInput struct {
	Body RegisterBody
}

type RegisterOutput struct {
	Body SessionResponse
}

type registrar interface {
	Register(ctx context.Context, email, password, name string) (*service.Session, error)
}

// RegisterHandler handles POST /v1/auth/register.
type RegisterHandler struct {
	UserService registrar
}

func NewRegisterHandler(svc registrar) *RegisterHandler {
	return &RegisterHandler{UserService: svc}
}

func (h *RegisterHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/v1/auth/register",
		Summary:       "Register",
		Description:   "Creates an account with a 15 day trial and returns a bearer token.",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func (h *RegisterHandler) handle(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	session, err := h.UserService.Register(ctx, input.Body.Email, input.Body.Password, input.Body.Name)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to register")
	}
	return &RegisterOutput{Body: sessionFrom(session)}, nil
}
