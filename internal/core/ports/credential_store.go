package ports

import (
	"context"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// CredentialStore persists accounts and their hashed passwords.
//
// Implementations must back email and username uniqueness with a storage-level
// constraint: Create reports a violation as domain.ErrDuplicateEmail or
// domain.ErrDuplicateUsername.
type CredentialStore interface {
	// FindByEmail returns domain.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// FindByID returns domain.ErrAccountNotFound when no account matches.
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, account *domain.Account) error
}
