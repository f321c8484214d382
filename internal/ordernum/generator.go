// Package ordernum generates human-readable order numbers.
//
// Numbers take the form ORD-20260831-000042: a date bucket plus a
// per-organization daily sequence. The sequence lives in Redis so it is
// shared across replicas; when Redis is unavailable the generator falls back
// to an in-process counter combined with a random suffix, trading gapless
// numbering for availability.
package ordernum

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	prefix      = "ORD"
	counterTTL  = 48 * time.Hour
	dateLayout  = "20060102"
	keyTemplate = "ordernum:%s:%s"
)

// Generator produces order numbers, preferring a shared Redis sequence.
type Generator struct {
	rdb      *redis.Client
	logger   *slog.Logger
	fallback atomic.Int64
}

// NewGenerator creates a generator. rdb may be nil, in which case every
// number comes from the fallback path.
func NewGenerator(rdb *redis.Client, logger *slog.Logger) *Generator {
	return &Generator{rdb: rdb, logger: logger}
}

// Next returns the next order number for the organization.
func (g *Generator) Next(ctx context.Context, organizationID uuid.UUID) string {
	date := time.Now().UTC().Format(dateLayout)

	if g.rdb != nil {
		key := fmt.Sprintf(keyTemplate, organizationID, date)
		seq, err := g.rdb.Incr(ctx, key).Result()
		if err == nil {
			if seq == 1 {
				// Counter keys expire after the day they cover.
				if err := g.rdb.Expire(ctx, key, counterTTL).Err(); err != nil {
					g.logger.Warn("set order counter ttl failed", slog.String("error", err.Error()))
				}
			}
			return fmt.Sprintf("%s-%s-%06d", prefix, date, seq)
		}
		g.logger.Warn("redis order counter unavailable, using fallback",
			slog.String("error", err.Error()),
		)
	}

	// Fallback: process-local sequence plus a random suffix so two replicas
	// cannot collide while Redis is down.
	seq := g.fallback.Add(1)
	suffix := rand.N(10000) // #nosec G404 -- collision avoidance only
	return fmt.Sprintf("%s-%s-%06d-%04d", prefix, date, seq, suffix)
}
