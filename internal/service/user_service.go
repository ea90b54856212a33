package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/operator/actions"
	"github.com/carson-networks/deadline-server/internal/storage/user"
)

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type tokenIssuer interface {
	Issue(userID uuid.UUID) (string, time.Time, error)
}

// Session is an issued bearer credential.
type Session struct {
	Token     string
	ExpiresAt time.Time
	UserID    uuid.UUID
}

// Account is the authenticated user together with their subscription.
type Account struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Subscription Subscription
}

// UserService handles registration, login and identity lookups.
type UserService struct {
	users    userReader
	operator processor
	tokens   tokenIssuer
	billing  *BillingService
}

func NewUserService(users userReader, op processor, tokens tokenIssuer, billing *BillingService) *UserService {
	return &UserService{
		users:    users,
		operator: op,
		tokens:   tokens,
		billing:  billing,
	}
}

// Register creates a user in the trial state and signs them in.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*Session, error) {
	email = user.NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalid("email", err)
	}

	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		return nil, invalid("password", err)
	}
	if err != nil {
		return nil, err
	}

	action := &actions.RegisterUser{Create: &user.UserCreate{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
	}}
	err = s.operator.Process(ctx, action)
	if errors.Is(err, user.ErrDuplicateEmail) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	return s.issue(action.ID)
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}
	return s.issue(u.ID)
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*Account, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Subscription: s.billing.summarize(u),
	}, nil
}

func (s *UserService) issue(userID uuid.UUID) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, UserID: userID}, nil
}
