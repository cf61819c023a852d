package brandkit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/renatodap/brandkit-generator-sub000/internal/logo"
	"github.com/renatodap/brandkit-generator-sub000/internal/models"
)

const (
	resultKeyPrefix = "brandkit:result:"
	jobKeyPrefix    = "brandkit:job:"
	jobTTL          = 24 * time.Hour
)

// Cache keeps pipeline results keyed by brief fingerprint, and async job
// status, in redis.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCache creates a cache. ttl applies to generation results.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Fingerprint identifies a brief independent of letter case and surrounding
// whitespace.
func Fingerprint(b logo.Brief) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	parts := []string{
		norm(b.BusinessName), norm(b.Description), norm(b.Industry),
		norm(b.Symbols.Primary), norm(b.Symbols.Secondary), norm(b.Symbols.Mood),
		norm(b.Palette.Primary), norm(b.Palette.Secondary), norm(b.Palette.Accent),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached result for a fingerprint. A miss is (nil, nil).
func (c *Cache) Get(ctx context.Context, fingerprint string) (*logo.AttemptResult, error) {
	raw, err := c.rdb.Get(ctx, resultKeyPrefix+fingerprint).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cached result: %w", err)
	}
	var res logo.AttemptResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	return &res, nil
}

// Put stores a result under a fingerprint.
func (c *Cache) Put(ctx context.Context, fingerprint string, res *logo.AttemptResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.rdb.Set(ctx, resultKeyPrefix+fingerprint, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache result: %w", err)
	}
	return nil
}

// SetJob records async job status.
func (c *Cache) SetJob(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := c.rdb.Set(ctx, jobKeyPrefix+job.ID, raw, jobTTL).Err(); err != nil {
		return fmt.Errorf("store job: %w", err)
	}
	return nil
}

// GetJob returns async job status. An unknown job is (nil, nil).
func (c *Cache) GetJob(ctx context.Context, id string) (*models.Job, error) {
	raw, err := c.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	var job models.Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}
