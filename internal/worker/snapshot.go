package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arcade-leaderboard/internal/config"
	"github.com/arcade-leaderboard/internal/postgres"
	"github.com/arcade-leaderboard/internal/redis"
)

// SnapshotWorker periodically rebuilds the Redis board snapshots from the
// relational store and rewarms the avatar asset cache. The relational store
// remains the source of truth; the snapshots only serve top-N reads.
type SnapshotWorker struct {
	store   *postgres.Repository
	boards  *redis.Boards
	assets  *redis.AssetCache
	config  *config.SnapshotConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSnapshotWorker creates a new snapshot worker
func NewSnapshotWorker(
	store *postgres.Repository,
	boards *redis.Boards,
	assets *redis.AssetCache,
	cfg *config.SnapshotConfig,
	logger *slog.Logger,
) *SnapshotWorker {
	return &SnapshotWorker{
		store:  store,
		boards: boards,
		assets: assets,
		config: cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background snapshot process
func (w *SnapshotWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("snapshot worker started", "interval", w.config.Interval)

	go w.run(ctx)
	return nil
}

// Stop stops the background snapshot process. Safe to call concurrently;
// the flag flips and the channel closes under the same lock hold, so only
// one caller can close it.
func (w *SnapshotWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	w.mu.Unlock()

	<-w.doneCh

	w.logger.Info("snapshot worker stopped")
	return nil
}

// run is the main worker loop
func (w *SnapshotWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce rebuilds every board snapshot and rewarms the asset cache.
// Also used on startup so the snapshots are usable before the first tick.
func (w *SnapshotWorker) RunOnce(ctx context.Context) {
	w.logger.Info("starting snapshot cycle")
	startTime := time.Now()

	games, err := w.store.ListGames(ctx)
	if err != nil {
		w.logger.Error("failed to list games for snapshot", "error", err)
		return
	}

	rebuiltCount := 0
	errorCount := 0

	for _, game := range games {
		if err := w.rebuildBoard(ctx, game.ID); err != nil {
			w.logger.Error("failed to rebuild board",
				"game_id", game.ID,
				"error", err,
			)
			errorCount++
		} else {
			rebuiltCount++
		}
	}

	if err := w.warmAssets(ctx); err != nil {
		w.logger.Warn("failed to warm asset cache", "error", err)
	}

	w.logger.Info("snapshot cycle completed",
		"duration", time.Since(startTime),
		"rebuilt", rebuiltCount,
		"errors", errorCount,
	)
}

// rebuildBoard replaces one game's snapshot with fresh best scores
func (w *SnapshotWorker) rebuildBoard(ctx context.Context, gameID string) error {
	bests, err := w.store.AllBestScoresForGame(ctx, gameID)
	if err != nil {
		return err
	}

	if len(bests) == 0 {
		w.logger.Debug("no scores to snapshot", "game_id", gameID)
		return nil
	}

	if err := w.boards.ReplaceBoard(ctx, gameID, bests); err != nil {
		return err
	}

	w.logger.Debug("rebuilt board snapshot",
		"game_id", gameID,
		"player_count", len(bests),
	)
	return nil
}

// warmAssets fills the avatar asset cache from the active catalog
func (w *SnapshotWorker) warmAssets(ctx context.Context) error {
	items, err := w.store.ListActiveListings(ctx)
	if err != nil {
		return err
	}

	urls := make(map[string]string, len(items))
	for _, item := range items {
		if item.ImageURL != "" {
			urls[item.AvatarID] = item.ImageURL
		}
	}

	return w.assets.Warm(ctx, urls)
}

// IsRunning returns whether the worker is currently running
func (w *SnapshotWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
