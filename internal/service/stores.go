package service

import (
	"context"

	"github.com/arcade-leaderboard/internal/domain"
)

// PlayerStore reads players and performs conditional balance writes.
type PlayerStore interface {
	GetPlayer(ctx context.Context, playerID string) (*domain.Player, error)
	// DebitCoins deducts amount and returns the new balance. It must be a
	// conditional write: it fails with domain.ErrInsufficientFunds instead
	// of driving the balance negative.
	DebitCoins(ctx context.Context, playerID string, amount int64) (int64, error)
}

// GameStore reads static game reference data.
type GameStore interface {
	GetGame(ctx context.Context, gameID string) (*domain.Game, error)
	ListGames(ctx context.Context) ([]domain.Game, error)
}

// ScoreStore reads and appends player score records.
type ScoreStore interface {
	AppendScore(ctx context.Context, rec domain.ScoreRecord) error
	// BestScoreForPlayer reports absent (false), not zero, for an empty
	// record set.
	BestScoreForPlayer(ctx context.Context, playerID, gameID string) (int64, bool, error)
	AllBestScoresForGame(ctx context.Context, gameID string) (map[string]int64, error)
	GamesWithScores(ctx context.Context, playerID string) ([]string, error)
}

// ShopStore reads catalog listings and manages ownership records. The
// storage layer must enforce uniqueness on (player, avatar): GrantOwnership
// fails with domain.ErrAlreadyOwned on a duplicate.
type ShopStore interface {
	GetActiveListing(ctx context.Context, avatarID string) (*domain.CatalogItem, error)
	OwnershipExists(ctx context.Context, playerID, avatarID string) (bool, error)
	GrantOwnership(ctx context.Context, rec domain.OwnershipRecord) error
}

// BoardView receives best-effort score updates for the top-N board
// snapshots.
type BoardView interface {
	SetScoreIfBetter(ctx context.Context, gameID, playerID string, value int64, higherIsBetter bool) (bool, error)
}
