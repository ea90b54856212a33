package account

import (
	"time"

	"github.com/carson-networks/deadline-server/internal/service"
)

// SessionResponse carries an issued bearer token.
type SessionResponse struct {
	Token     string `json:"token" doc:"Bearer token for the Authorization header"`
	ExpiresAt string `json:"expiresAt" doc:"RFC3339 expiry of the token"`
	UserID    string `json:"userID" doc:"User UUID"`
}

func sessionFrom(s *service.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		UserID:    s.UserID.String(),
	}
}
