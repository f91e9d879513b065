// file: service/cache.go

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"time"

	"github.com/redis/go-redis/v9"
)

// ICacheClient is the subset of the redis client used for caching.
type ICacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// profileTombstone marks a just-invalidated profile. While it lives, fills are refused,
// so a reader that loaded the row before an update cannot put the old profile back.
const profileTombstone = "-"

// DefaultInvalidationWindow bounds how long a read that raced an update may take to fill.
const DefaultInvalidationWindow = 5 * time.Second

// ProfileCache is a cache-aside store of public profiles keyed by user id.
// A nil *ProfileCache is valid and never hits.
type ProfileCache struct {
	client ICacheClient
	ttl    time.Duration
	window time.Duration
}

func NewProfileCache(client ICacheClient, ttl time.Duration) *ProfileCache {
	return &ProfileCache{client: client, ttl: ttl, window: DefaultInvalidationWindow}
}

func profileKey(userID int) string {
	return fmt.Sprintf("profile:%d", userID)
}

func (c *ProfileCache) Get(ctx context.Context, userID int) (*model.PublicUser, bool) {
	if c == nil {
		return nil, false
	}
	cached, err := c.client.Get(ctx, profileKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).WithField("user_id", userID).Warn("Profile cache read failed")
		}
		return nil, false
	}
	if cached == profileTombstone {
		return nil, false
	}

	var profile model.PublicUser
	if err := json.Unmarshal([]byte(cached), &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

// Set fills the entry only if it is absent. A live entry or tombstone wins.
func (c *ProfileCache) Set(ctx context.Context, profile model.PublicUser) {
	if c == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.SetNX(ctx, profileKey(profile.ID), data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("user_id", profile.ID).Warn("Profile cache write failed")
	}
}

// Invalidate replaces the entry with a tombstone that expires after the invalidation window.
func (c *ProfileCache) Invalidate(ctx context.Context, userID int) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, profileKey(userID), profileTombstone, c.window).Err(); err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Warn("Profile cache invalidation failed")
	}
}
