package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const roleKeyPrefix = "auth:role:"

// RoleCache caches role names by role id.
// Key format: auth:role:<role_id>
type RoleCache struct {
	client redis.Cmdable
}

// NewRoleCache creates a RoleCache wrapping the given Redis client.
func NewRoleCache(client redis.Cmdable) *RoleCache {
	return &RoleCache{client: client}
}

// Get returns the cached name of roleID. A miss is ("", false, nil).
func (c *RoleCache) Get(ctx context.Context, roleID string) (string, bool, error) {
	name, err := c.client.Get(ctx, c.key(roleID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("role cache get: %w", err)
	}
	return name, true, nil
}

// Set caches name for roleID; it expires after ttl.
func (c *RoleCache) Set(ctx context.Context, roleID, name string, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.key(roleID), name, ttl).Err(); err != nil {
		return fmt.Errorf("role cache set: %w", err)
	}
	return nil
}

func (c *RoleCache) key(roleID string) string {
	return roleKeyPrefix + roleID
}
