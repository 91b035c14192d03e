package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/taskboardhq/taskboard/pkg/cache"
)

const blacklistKeyPrefix = "auth:blacklist:"

// Blacklist records revoked tokens until their natural expiry. Logout adds
// the token with a TTL equal to its remaining lifetime, so entries clean
// themselves up and the blacklist never grows past the live token set.
//
// Tokens are stored hashed; the raw credential never lands in the cache.
type Blacklist struct {
	cache cache.Cache
}

// NewBlacklist creates a token blacklist over the given cache
func NewBlacklist(c cache.Cache) *Blacklist {
	return &Blacklist{cache: c}
}

// Add revokes a token for its remaining lifetime
func (b *Blacklist) Add(ctx context.Context, token string, expiresAt time.Time) {
	remaining := time.Until(expiresAt)
	if remaining <= 0 {
		return
	}
	b.cache.Set(ctx, blacklistKeyPrefix+hashToken(token), []byte("1"), remaining)
}

// Contains reports whether the token has been revoked. Cache errors read as
// "not revoked": the blacklist is best effort and expiry remains the hard
// bound on token lifetime.
func (b *Blacklist) Contains(ctx context.Context, token string) bool {
	_, ok := b.cache.Get(ctx, blacklistKeyPrefix+hashToken(token))
	return ok
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
