// internal/cache/cache.go
// Keyed query cache with explicit invalidation.
//
// Mutations do not update cached views in place; they invalidate the keys
// that depend on them and the next read repopulates. The handle is injected
// into services, never reached through a global.

package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is the cache surface the sync layer depends on. Implementations are
// best-effort: a cache miss and a cache failure look the same to callers.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// DefaultTTL is the backstop expiry on cached entries so a missed
// invalidation self-heals.
const DefaultTTL = 60 * time.Second

// FeedKey is the cache key for the full post feed.
const FeedKey = "posts:feed"

// CommentsKey returns the cache key for a post's comment list.
func CommentsKey(postID string) string {
	return fmt.Sprintf("comments:%s", postID)
}

// LikedKey returns the cache key for one user's like state on a post.
func LikedKey(postID, userID string) string {
	return fmt.Sprintf("likes:%s:%s", postID, userID)
}
