package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"garagehub/internal/kyc/models"
	id "garagehub/pkg/domain"
	"garagehub/pkg/platform/sentinel"
)

const keyPrefix = "kyc:record:"

// Backend is the source of truth the cache sits in front of.
type Backend interface {
	GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Record, error)
	FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Record, error)
	Execute(ctx context.Context, expertID id.ExpertID, validate func(*models.Record) error, mutate func(*models.Record) bool) (*models.Record, error)
	ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.Record, error)
}

// CachedStore is a read-through, write-through Redis cache over a Backend.
// Redis faults never fail a request: they are logged and the call goes to the
// backend. Entries expire after ttl, which bounds staleness when an
// invalidation is lost.
//
// Reads fill a missing entry with SETNX and writes overwrite it, so a reader
// that loaded a record before a concurrent Execute cannot replace the newer
// copy.
type CachedStore struct {
	next   Backend
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached wraps next. A nil logger discards cache warnings.
func NewCached(next Backend, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) GetOrCreate(ctx context.Context, expertID id.ExpertID, now time.Time) (*models.Record, error) {
	if r, err := c.get(ctx, expertID); err == nil {
		return r, nil
	}
	r, err := c.next.GetOrCreate(ctx, expertID, now)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, r)
	return r, nil
}

func (c *CachedStore) FindByExpertID(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	if r, err := c.get(ctx, expertID); err == nil {
		return r, nil
	}
	r, err := c.next.FindByExpertID(ctx, expertID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, r)
	return r, nil
}

// Execute always goes to the backend so the row lock is authoritative, then
// refreshes the cached copy. If the refresh fails the entry is dropped.
func (c *CachedStore) Execute(ctx context.Context, expertID id.ExpertID, validate func(*models.Record) error, mutate func(*models.Record) bool) (*models.Record, error) {
	r, err := c.next.Execute(ctx, expertID, validate, mutate)
	if err != nil {
		return nil, err
	}
	c.set(ctx, r)
	return r, nil
}

// ListByStatus is not cached.
func (c *CachedStore) ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.Record, error) {
	return c.next.ListByStatus(ctx, status, limit)
}

func (c *CachedStore) get(ctx context.Context, expertID id.ExpertID) (*models.Record, error) {
	raw, err := c.client.Get(ctx, keyPrefix+expertID.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrCacheMiss
		}
		c.logger.WarnContext(ctx, "kyc cache read failed", "expert_id", expertID.String(), "error", err)
		return nil, err
	}
	var r models.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		c.logger.WarnContext(ctx, "kyc cache entry undecodable", "expert_id", expertID.String(), "error", err)
		c.drop(ctx, expertID)
		return nil, err
	}
	return &r, nil
}

func (c *CachedStore) set(ctx context.Context, r *models.Record) {
	raw, err := json.Marshal(r)
	if err == nil {
		err = c.client.Set(ctx, keyPrefix+r.ExpertID.String(), raw, c.ttl).Err()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "kyc cache write failed", "expert_id", r.ExpertID.String(), "error", err)
		c.drop(ctx, r.ExpertID)
	}
}

// fill caches a record loaded on a miss unless an entry appeared meanwhile.
func (c *CachedStore) fill(ctx context.Context, r *models.Record) {
	raw, err := json.Marshal(r)
	if err == nil {
		err = c.client.SetNX(ctx, keyPrefix+r.ExpertID.String(), raw, c.ttl).Err()
	}
	if err != nil {
		c.logger.WarnContext(ctx, "kyc cache fill failed", "expert_id", r.ExpertID.String(), "error", err)
	}
}

func (c *CachedStore) drop(ctx context.Context, expertID id.ExpertID) {
	if err := c.client.Del(ctx, keyPrefix+expertID.String()).Err(); err != nil {
		c.logger.WarnContext(ctx, "kyc cache invalidation failed", "expert_id", expertID.String(), "error", err)
	}
}
