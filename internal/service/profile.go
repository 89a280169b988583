package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/arcade-leaderboard/internal/config"
	"github.com/arcade-leaderboard/internal/domain"
	"github.com/arcade-leaderboard/internal/progression"
)

// ProfileService assembles public profile cards: the player, their derived
// level, their best-ranked games, and career totals.
type ProfileService struct {
	players PlayerStore
	scores  ScoreStore
	rank    *RankService
	config  *config.ProfileConfig
	logger  *slog.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(
	players PlayerStore,
	scores ScoreStore,
	rank *RankService,
	cfg *config.ProfileConfig,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		players: players,
		scores:  scores,
		rank:    rank,
		config:  cfg,
		logger:  logger,
	}
}

// PublicProfile builds the profile card for a player. Rank computation fans
// out concurrently over every game the player has a score in; a game whose
// computation fails is dropped from the result rather than failing the whole
// profile. A player with no scores gets an empty card, not an error.
func (s *ProfileService) PublicProfile(ctx context.Context, playerID string) (*domain.PublicProfile, error) {
	player, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	gameIDs, err := s.scores.GamesWithScores(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting played games: %w", err)
	}

	ranked := s.rankAllGames(ctx, playerID, gameIDs)

	// Ascending by rank; ties keep first-played order via the stable sort.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank < ranked[j].Rank
	})

	stats := domain.CareerStats{}
	for _, r := range ranked {
		if r.Rank == 1 {
			stats.TotalRank1++
		}
		if r.Rank <= 5 {
			stats.TotalRankTop5++
		}
	}

	top := ranked
	if len(top) > s.config.TopGames {
		top = top[:s.config.TopGames]
	}

	return &domain.PublicProfile{
		Player:      *player,
		Level:       progression.LevelFromXP(player.XP),
		XPProgress:  progression.ProgressToNextLevel(player.XP),
		TopGames:    top,
		CareerStats: stats,
	}, nil
}

// rankAllGames computes the rank for every game concurrently. Results keep
// gameIDs order; failed games are absent. Caller cancellation propagates to
// in-flight rank reads through the shared context.
func (s *ProfileService) rankAllGames(ctx context.Context, playerID string, gameIDs []string) []domain.RankedScore {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*domain.RankedScore, len(gameIDs))
	var wg sync.WaitGroup

	for i, gameID := range gameIDs {
		wg.Add(1)
		go func(i int, gameID string) {
			defer wg.Done()
			r, err := s.rank.RankOf(ctx, playerID, gameID)
			if err != nil {
				s.logger.Warn("dropping game from profile",
					"player_id", playerID,
					"game_id", gameID,
					"error", err,
				)
				return
			}
			results[i] = r
		}(i, gameID)
	}
	wg.Wait()

	ranked := make([]domain.RankedScore, 0, len(gameIDs))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}
	return ranked
}
