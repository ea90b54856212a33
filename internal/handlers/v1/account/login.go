package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/deadline-server/internal/handlers"
	"github.com/carson-networks/deadline-server/internal/service"
)

type LoginBody struct {
	Email    string `json:"email" doc:"Login email"`
	Password string `json:"password" doc:"Password"`
}

type LoginInput struct {
	Body LoginBody
}

type LoginOutput struct {
	Body SessionResponse
}

type authenticator interface {
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

// LoginHandler handles POST /v1/auth/login.
type LoginHandler struct {
	UserService authenticator
}

func NewLoginHandler(svc authenticator) *LoginHandler {
	return &LoginHandler{UserService: svc}
}

func (h *LoginHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/v1/auth/login",
		Summary:     "Log in",
		Tags:        []string{"Auth"},
	}, h.handle)
}

func (h *LoginHandler) handle(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	session, err := h.UserService.Login(ctx, input.Body.Email, input.Body.Password)
	if err != nil {
		return nil, handlers.ServiceError(err, "failed to log in")
	}
	return &LoginOutput{Body: sessionFrom(session)}, nil
}
