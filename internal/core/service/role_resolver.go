package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pskiad17/FinancialOrganizer/internal/core/ports"
	"github.com/pskiad17/FinancialOrganizer/internal/pkg/metrics"
)

const defaultRoleCacheTTL = 10 * time.Minute

// RoleResolver composes RoleStore lookups into the single role name of an
// account. A missing assignment or role is a referential-integrity violation,
// never a user error.
type RoleResolver struct {
	store ports.RoleStore
	cache ports.RoleCache // optional
	ttl   time.Duration
	log   zerolog.Logger
}

// NewRoleResolver returns a RoleResolver. cache may be nil.
func NewRoleResolver(store ports.RoleStore, cache ports.RoleCache, ttl time.Duration, log zerolog.Logger) *RoleResolver {
	if ttl <= 0 {
		ttl = defaultRoleCacheTTL
	}
	return &RoleResolver{store: store, cache: cache, ttl: ttl, log: log}
}

// ResolveRole returns the role name assigned to userID.
func (r *RoleResolver) ResolveRole(ctx context.Context, userID string) (string, error) {
	assignment, err := r.store.FindAssignment(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve role for %s: %w", userID, err)
	}

	if name, ok := r.cached(ctx, assignment.RoleID); ok {
		return name, nil
	}

	role, err := r.store.FindRoleByID(ctx, assignment.RoleID)
	if err != nil {
		return "", fmt.Errorf("resolve role %s for %s: %w", assignment.RoleID, userID, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, role.ID, role.Name, r.ttl); err != nil {
			r.log.Warn().Err(err).Str("role_id", role.ID).Msg("failed to cache role")
		}
	}
	return role.Name, nil
}

// cached looks roleID up in the cache. Cache failures are logged and treated
// as a miss so the store stays authoritative.
func (r *RoleResolver) cached(ctx context.Context, roleID string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	name, ok, err := r.cache.Get(ctx, roleID)
	switch {
	case err != nil:
		metrics.RoleCacheTotal.WithLabelValues("error").Inc()
		r.log.Warn().Err(err).Str("role_id", roleID).Msg("role cache lookup failed, falling back to store")
		return "", false
	case !ok:
		metrics.RoleCacheTotal.WithLabelValues("miss").Inc()
		return "", false
	default:
		metrics.RoleCacheTotal.WithLabelValues("hit").Inc()
		return name, true
	}
}
