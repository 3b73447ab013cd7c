package ports

import (
	"context"
	"time"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// LoginQuery is the input of AuthService.Login.
type LoginQuery struct {
	Email    string
	Password string
}

// RegisterCommand is the input of AuthService.Register. It is expected to have
// passed request validation already.
type RegisterCommand struct {
	FirstName       string
	LastName        string
	DateOfBirth     time.Time
	Country         string
	Email           string
	Password        string
	ConfirmPassword string
}

type AuthService interface {
	Login(ctx context.Context, query LoginQuery) (*domain.Session, error)
	Register(ctx context.Context, cmd RegisterCommand) (*domain.Session, error)
	// Refresh issues a new token for an already authenticated user id.
	Refresh(ctx context.Context, userID string) (*domain.Session, error)
}
