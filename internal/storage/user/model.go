package user

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
)

const tableName = "users"

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

var columns = []any{
	"id",
	"email",
	"password_hash",
	"name",
	"subscription_status",
	"trial_started_at",
	"trial_extended",
	"stripe_customer_id",
	"created_at",
}

// SubscriptionStatus is the billing state stored on a user.
type SubscriptionStatus string

const (
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// User represents a user record.
type User struct {
	ID                 uuid.UUID
	Email              string
	PasswordHash       string
	Name               string
	SubscriptionStatus SubscriptionStatus
	TrialStartedAt     time.Time
	TrialExtended      bool
	StripeCustomerID   string
	CreatedAt          time.Time
}

// UserCreate is the input for registering a new user.
type UserCreate struct {
	Email        string
	PasswordHash string
	Name         string
}

// SubscriptionUpdate changes a user's billing state. Empty strings leave columns untouched.
type SubscriptionUpdate struct {
	Status           SubscriptionStatus
	StripeCustomerID string
}

// IUserReader defines the read operations on users.
type IUserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
}

// IUserWriter defines the transactional write operations on users.
type IUserWriter interface {
	IUserReader
	Insert(ctx context.Context, create *UserCreate) (uuid.UUID, error)
	UpdateSubscription(ctx context.Context, id uuid.UUID, update *SubscriptionUpdate) error
	MarkTrialExtended(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRow struct {
	ID                 uuid.UUID `db:"id"`
	Email              string    `db:"email"`
	PasswordHash       string    `db:"password_hash"`
	Name               string    `db:"name"`
	SubscriptionStatus string    `db:"subscription_status"`
	TrialStartedAt     time.Time `db:"trial_started_at"`
	TrialExtended      bool      `db:"trial_extended"`
	StripeCustomerID   string    `db:"stripe_customer_id"`
	CreatedAt          time.Time `db:"created_at"`
}

func rowToUser(row userRow) *User {
	return &User{
		ID:                 row.ID,
		Email:              row.Email,
		PasswordHash:       row.PasswordHash,
		Name:               row.Name,
		SubscriptionStatus: SubscriptionStatus(row.SubscriptionStatus),
		TrialStartedAt:     row.TrialStartedAt,
		TrialExtended:      row.TrialExtended,
		StripeCustomerID:   row.StripeCustomerID,
		CreatedAt:          row.CreatedAt,
	}
}
