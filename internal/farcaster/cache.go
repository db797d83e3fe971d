package farcaster

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Awarix/Farc-mini-app-auth/platform/logger"

	"github.com/redis/go-redis/v9"
)

// CachedResolver is a read-through cache in front of a ProfileResolver.
// Redis failures fall through to the live API on reads and are ignored on
// writes, so the cache can never fail an otherwise valid verification. Only
// successful lookups are cached; not-found and transport errors always hit
// the live service again.
type CachedResolver struct {
	next ProfileResolver
	rdb  *redis.Client
	ttl  time.Duration
	log  *logger.Logger
}

// NewCachedResolver wraps next with a Redis-backed profile cache.
func NewCachedResolver(next ProfileResolver, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedResolver {
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl, log: log}
}

type cachedProfile struct {
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	PfpURL      string  `json:"pfp_url"`
	Address     *string `json:"address,omitempty"`
}

func cacheKey(fid int64) string {
	return fmt.Sprintf("profile:%d", fid)
}

// ResolveProfile returns the cached profile when present, otherwise resolves
// via the wrapped resolver and stores the result.
func (c *CachedResolver) ResolveProfile(ctx context.Context, fid int64) (Profile, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(fid)).Result()
	if err == nil {
		var cached cachedProfile
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return Profile{
				Username:    cached.Username,
				DisplayName: cached.DisplayName,
				PfpURL:      cached.PfpURL,
				Address:     cached.Address,
			}, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("profile cache read failed", "fid", fid, "error", err)
	}

	profile, err := c.next.ResolveProfile(ctx, fid)
	if err != nil {
		return Profile{}, err
	}

	payload, err := json.Marshal(cachedProfile{
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		PfpURL:      profile.PfpURL,
		Address:     profile.Address,
	})
	if err == nil {
		if setErr := c.rdb.Set(ctx, cacheKey(fid), payload, c.ttl).Err(); setErr != nil {
			c.log.Warn("profile cache write failed", "fid", fid, "error", setErr)
		}
	}

	return profile, nil
}

var _ ProfileResolver = (*CachedResolver)(nil)
