package ports

import (
	"context"
	"time"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

// RoleStore persists roles and role assignments.
type RoleStore interface {
	// FindAssignment returns domain.ErrRoleAssignmentMissing when userID has no role.
	FindAssignment(ctx context.Context, userID string) (*domain.RoleAssignment, error)
	// FindRoleByID returns domain.ErrRoleNotFound when the role does not exist.
	FindRoleByID(ctx context.Context, roleID string) (*domain.Role, error)
	// FindRoleByName returns domain.ErrRoleNotFound when the role does not exist.
	FindRoleByName(ctx context.Context, name string) (*domain.Role, error)
	Assign(ctx context.Context, assignment domain.RoleAssignment) error
}

// RoleCache is an optional read-through cache of role id to role name.
// A miss is reported as ("", false, nil).
type RoleCache interface {
	Get(ctx context.Context, roleID string) (string, bool, error)
	Set(ctx context.Context, roleID, name string, ttl time.Duration) error
}

// RoleResolver produces the single role name of an account.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (string, error)
}
