package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/courtside-app/courtside-server/services"
	"github.com/redis/go-redis/v9"
)

const defaultStandingsTTL = 5 * time.Minute

// RedisStatsCache stores derived statistics in Redis. It backs both the
// standings cache and the invalidation hooks the game engine calls after
// every update.
type RedisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStatsCache {
	if ttl <= 0 {
		ttl = defaultStandingsTTL
	}
	return &RedisStatsCache{client: client, ttl: ttl, logger: logger}
}

func divisionStandingsKey(divisionID string) string {
	return fmt.Sprintf("standings:division:%s", divisionID)
}

func teamStatsKey(divisionID, teamName string) string {
	return fmt.Sprintf("stats:team:%s:%s", divisionID, teamName)
}

func poolStatsKey(poolID string) string {
	return fmt.Sprintf("stats:pool:%s", poolID)
}

func (c *RedisStatsCache) GetDivisionStandings(ctx context.Context, divisionID string) ([]services.TeamStanding, bool) {
	payload, err := c.client.Get(ctx, divisionStandingsKey(divisionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("failed to read standings from redis",
				slog.String("division_id", divisionID),
				slog.Any("error", err))
		}
		return nil, false
	}
	var standings []services.TeamStanding
	if err := json.Unmarshal(payload, &standings); err != nil {
		c.logger.Warn("corrupt standings cache entry, dropping it",
			slog.String("division_id", divisionID),
			slog.Any("error", err))
		c.client.Del(ctx, divisionStandingsKey(divisionID))
		return nil, false
	}
	return standings, true
}

func (c *RedisStatsCache) SetDivisionStandings(ctx context.Context, divisionID string, standings []services.TeamStanding) {
	payload, err := json.Marshal(standings)
	if err != nil {
		c.logger.Warn("failed to marshal standings",
			slog.String("division_id", divisionID),
			slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, divisionStandingsKey(divisionID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache standings",
			slog.String("division_id", divisionID),
			slog.Any("error", err))
	}
}

func (c *RedisStatsCache) InvalidateTeamCache(ctx context.Context, teamName, divisionID string) error {
	if err := c.client.Del(ctx, teamStatsKey(divisionID, teamName)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate team cache for %s: %w", teamName, err)
	}
	return nil
}

func (c *RedisStatsCache) InvalidateDivisionCache(ctx context.Context, divisionID string) error {
	if err := c.client.Del(ctx, divisionStandingsKey(divisionID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate division cache for %s: %w", divisionID, err)
	}
	return nil
}

func (c *RedisStatsCache) InvalidatePoolCache(ctx context.Context, poolID string) error {
	if err := c.client.Del(ctx, poolStatsKey(poolID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate pool cache for %s: %w", poolID, err)
	}
	return nil
}

var (
	_ services.StandingsCache   = (*RedisStatsCache)(nil)
	_ services.StatsInvalidator = (*RedisStatsCache)(nil)
)

// NoopStatsCache satisfies the cache interfaces when Redis is not
// configured. Every read misses and every write is discarded.
type NoopStatsCache struct{}

func (NoopStatsCache) GetDivisionStandings(context.Context, string) ([]services.TeamStanding, bool) {
	return nil, false
}
func (NoopStatsCache) SetDivisionStandings(context.Context, string, []services.TeamStanding) {}
func (NoopStatsCache) InvalidateTeamCache(context.Context, string, string) error             { return nil }
func (NoopStatsCache) InvalidateDivisionCache(context.Context, string) error                 { return nil }
func (NoopStatsCache) InvalidatePoolCache(context.Context, string) error                     { return nil }
