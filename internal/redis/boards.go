package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/arcade-leaderboard/internal/config"
	"github.com/arcade-leaderboard/internal/domain"
)

// Boards maintains per-game best-score snapshots in Redis sorted sets.
// The snapshots serve the read-heavy top-N board endpoint; the relational
// store stays the source of truth for rank computation.
type Boards struct {
	client *redis.Client
	logger *slog.Logger
}

// NewBoards creates a new Redis board view
func NewBoards(cfg *config.RedisConfig, logger *slog.Logger) (*Boards, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Boards{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (b *Boards) Close() error {
	return b.client.Close()
}

// Client returns the underlying Redis client
func (b *Boards) Client() *redis.Client {
	return b.client
}

// boardKey returns the Redis key for a game's best-score sorted set
func (b *Boards) boardKey(gameID string) string {
	return fmt.Sprintf("board:%s:best", gameID)
}

// SetScoreIfBetter updates a player's snapshot entry only if the new value
// beats the current one per the game's direction.
func (b *Boards) SetScoreIfBetter(ctx context.Context, gameID, playerID string, value int64, higherIsBetter bool) (bool, error) {
	key := b.boardKey(gameID)

	current, err := b.client.ZScore(ctx, key, playerID).Result()
	if err != nil && err != redis.Nil {
		return false, fmt.Errorf("getting current score: %w", err)
	}

	if err != redis.Nil {
		isBetter := (higherIsBetter && float64(value) > current) ||
			(!higherIsBetter && float64(value) < current)
		if !isBetter {
			return false, nil
		}
	}

	err = b.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(value),
		Member: playerID,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("setting score: %w", err)
	}
	return true, nil
}

// ReplaceBoard atomically swaps a game's snapshot for a fresh set of best
// scores.
func (b *Boards) ReplaceBoard(ctx context.Context, gameID string, bests map[string]int64) error {
	key := b.boardKey(gameID)

	pipe := b.client.TxPipeline()
	pipe.Del(ctx, key)
	for playerID, value := range bests {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(value),
			Member: playerID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replacing board: %w", err)
	}
	return nil
}

// TopN returns the best N entries of a game's board. Direction follows the
// game's flag: ascending when lower scores are better.
func (b *Boards) TopN(ctx context.Context, gameID string, n int, lowerIsBetter bool) ([]domain.BoardEntry, error) {
	key := b.boardKey(gameID)

	var results []redis.Z
	var err error
	if lowerIsBetter {
		results, err = b.client.ZRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	} else {
		results, err = b.client.ZRevRangeWithScores(ctx, key, 0, int64(n-1)).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.BoardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.BoardEntry{
			Position: int64(i + 1),
			PlayerID: result.Member.(string),
			Score:    int64(result.Score),
		}
	}
	return entries, nil
}

// Count returns the number of players on a game's board
func (b *Boards) Count(ctx context.Context, gameID string) (int64, error) {
	key := b.boardKey(gameID)
	count, err := b.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}
