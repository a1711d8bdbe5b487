// Package rolecache is a read-through cache in front of admin_role_info.
//
// Lookups by name and by id are served from Redis when configured, otherwise
// from an in-process map. Every role write goes through Cache.CreateRole,
// which drops the affected keys so a stale mapping is never served after the
// table changes.
package rolecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tickethub/internal/identity/models"
	id "tickethub/pkg/domain"
)

const (
	keyPrefix  = "tickethub:role:"
	defaultTTL = 5 * time.Minute
)

// RoleStore is the authoritative role table.
type RoleStore interface {
	FindRoleByName(ctx context.Context, name string) (*models.AdminRole, error)
	FindRoleByID(ctx context.Context, roleID id.RoleID) (*models.AdminRole, error)
	CreateRole(ctx context.Context, name string) (*models.AdminRole, error)
}

// Backend stores encoded roles under string keys.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache wraps a RoleStore with a read-through cache.
type Cache struct {
	store   RoleStore
	backend Backend
	ttl     time.Duration
	logger  *slog.Logger
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// New constructs a Cache. A nil backend selects the in-process backend.
func New(store RoleStore, backend Backend, opts ...Option) *Cache {
	if backend == nil {
		backend = NewLocalBackend()
	}
	c := &Cache{
		store:   store,
		backend: backend,
		ttl:     defaultTTL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func nameKey(name string) string     { return keyPrefix + "name:" + name }
func idKey(roleID id.RoleID) string { return keyPrefix + "id:" + strconv.FormatInt(roleID.Int64(), 10) }

func (c *Cache) FindRoleByName(ctx context.Context, name string) (*models.AdminRole, error) {
	if role, ok := c.lookup(ctx, nameKey(name)); ok {
		return role, nil
	}
	role, err := c.store.FindRoleByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, role)
	return role, nil
}

func (c *Cache) FindRoleByID(ctx context.Context, roleID id.RoleID) (*models.AdminRole, error) {
	if role, ok := c.lookup(ctx, idKey(roleID)); ok {
		return role, nil
	}
	role, err := c.store.FindRoleByID(ctx, roleID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, role)
	return role, nil
}

// CreateRole writes through to the store and invalidates the role's keys.
func (c *Cache) CreateRole(ctx context.Context, name string) (*models.AdminRole, error) {
	role, err := c.store.CreateRole(ctx, name)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, role)
	return role, nil
}

// Invalidate drops cached entries for role.
func (c *Cache) Invalidate(ctx context.Context, role *models.AdminRole) {
	if role == nil {
		return
	}
	if err := c.backend.Delete(ctx, nameKey(role.Name), idKey(role.ID)); err != nil {
		c.logger.WarnContext(ctx, "role cache invalidate failed", "role", role.Name, "error", err)
	}
}

// lookup treats backend errors as misses; the store stays authoritative.
func (c *Cache) lookup(ctx context.Context, key string) (*models.AdminRole, bool) {
	raw, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "role cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var role models.AdminRole
	if err := json.Unmarshal([]byte(raw), &role); err != nil {
		return nil, false
	}
	return &role, true
}

func (c *Cache) fill(ctx context.Context, role *models.AdminRole) {
	raw, err := json.Marshal(role)
	if err != nil {
		return
	}
	for _, key := range []string{nameKey(role.Name), idKey(role.ID)} {
		if err := c.backend.Set(ctx, key, string(raw), c.ttl); err != nil {
			c.logger.WarnContext(ctx, "role cache write failed", "key", key, "error", err)
			return
		}
	}
}

// RedisBackend stores entries in Redis.
type RedisBackend struct {
	client redis.Cmdable
}

func NewRedisBackend(client redis.Cmdable) *RedisBackend {
	return &RedisBackend{client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := b.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// LocalBackend is an in-process map with per-entry expiry.
type LocalBackend struct {
	mu      sync.Mutex
	entries map[string]localEntry
	now     func() time.Time
}

type localEntry struct {
	value     string
	expiresAt time.Time
}

func NewLocalBackend() *LocalBackend {
	return &LocalBackend{entries: make(map[string]localEntry), now: time.Now}
}

func (b *LocalBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entry, ok := b.entries[key]
	if !ok {
		return "", false, nil
	}
	if !b.now().Before(entry.expiresAt) {
		delete(b.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (b *LocalBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = localEntry{value: value, expiresAt: b.now().Add(ttl)}
	return nil
}

func (b *LocalBackend) Delete(_ context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range keys {
		delete(b.entries, key)
	}
	return nil
}
