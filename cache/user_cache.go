package cache

import (
	"context"
	"encoding/json"
	"time"

	"taskdo-service/models"

	"github.com/umakantv/go-utils/cache"
	"golang.org/x/sync/singleflight"
)

const userKeyPrefix = "user:"

// UserFinder is the store lookup behind the cache
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// UserCache memoizes the per-request username lookup done by bearer
// authentication. Cached entries never carry the password hash. A change to
// a user made directly in the database is seen once its entry expires (ttl).
type UserCache struct {
	store cache.Cache
	users UserFinder
	ttl   time.Duration
	group singleflight.Group
}

func NewUserCache(store cache.Cache, users UserFinder, ttl time.Duration) *UserCache {
	return &UserCache{store: store, users: users, ttl: ttl}
}

// FindByUsername serves from the cache, falling back to the store with
// concurrent misses for one username collapsed into a single query.
// Store errors (including not-found) are returned unchanged and not cached.
func (c *UserCache) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	key := userKeyPrefix + username
	if user, ok := c.lookup(key); ok {
		return user, nil
	}

	// The lookup is shared by every waiter, so one caller's cancellation
	// must not fail the others
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		user, err := c.users.FindByUsername(shared, username)
		if err != nil {
			return nil, err
		}
		// Both backends hand a string back unchanged (redis round-trips it as JSON)
		if payload, err := json.Marshal(user); err == nil {
			_ = c.store.Set(key, string(payload), c.ttl)
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	user := *v.(*models.User)
	return &user, nil
}

func (c *UserCache) lookup(key string) (*models.User, bool) {
	cached, err := c.store.Get(key)
	if err != nil {
		return nil, false
	}
	payload, ok := cached.(string)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := json.Unmarshal([]byte(payload), &user); err != nil {
		return nil, false
	}
	return &user, true
}
