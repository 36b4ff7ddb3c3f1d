package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix   = "user:%d"
	CountsKeyPrefix = "user:%d:counts"
)

const (
	UserTTL   = 5 * time.Minute
	CountsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CountsKey(userID uint) string {
	return fmt.Sprintf(CountsKeyPrefix, userID)
}

// InvalidateUser drops the cached record and stats of a user.
func (c *Cache) InvalidateUser(ctx context.Context, userID uint) {
	c.Invalidate(ctx, UserKey(userID), CountsKey(userID))
}

// InvalidateCounts drops the cached profile stats of the given users.
func (c *Cache) InvalidateCounts(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, CountsKey(id))
	}
	c.Invalidate(ctx, keys...)
}
