package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arcade-leaderboard/internal/domain"
)

// RankService computes a player's global standing in a game from the full
// set of best scores.
type RankService struct {
	games  GameStore
	scores ScoreStore
	logger *slog.Logger
}

// NewRankService creates a new rank service
func NewRankService(games GameStore, scores ScoreStore, logger *slog.Logger) *RankService {
	return &RankService{
		games:  games,
		scores: scores,
		logger: logger,
	}
}

// RankOf returns the player's best score for a game and its rank: 1 plus
// the count of other players whose best score is strictly better per the
// game's direction flag. Tied players share the rank number. Returns
// domain.ErrPlayerNotRanked when the player has no score for the game.
func (s *RankService) RankOf(ctx context.Context, playerID, gameID string) (*domain.RankedScore, error) {
	game, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}

	best, ok, err := s.scores.BestScoreForPlayer(ctx, playerID, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting best score: %w", err)
	}
	if !ok {
		return nil, domain.ErrPlayerNotRanked
	}

	bests, err := s.scores.AllBestScoresForGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting all best scores: %w", err)
	}

	// The queried player is excluded from their own comparison set.
	better := 0
	for otherID, value := range bests {
		if otherID == playerID {
			continue
		}
		if strictlyBetter(value, best, game.LowerIsBetter) {
			better++
		}
	}

	return &domain.RankedScore{
		GameID:   game.ID,
		GameName: game.Name,
		Rank:     int64(better + 1),
		Score:    best,
	}, nil
}

// strictlyBetter reports whether a beats b under the game's direction flag.
func strictlyBetter(a, b int64, lowerIsBetter bool) bool {
	if lowerIsBetter {
		return a < b
	}
	return a > b
}
