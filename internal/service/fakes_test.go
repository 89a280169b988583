package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/arcade-leaderboard/internal/domain"
)

// fakeStore is an in-memory implementation of the store interfaces used by
// the service tests. Best scores are derived by folding the record set
// through the game's direction flag, mirroring the storage contract.
type fakeStore struct {
	mu        sync.Mutex
	players   map[string]*domain.Player
	games     map[string]domain.Game
	records   []domain.ScoreRecord
	listings  map[string]domain.CatalogItem
	ownership map[string]domain.OwnershipRecord

	bestScoresErr   map[string]error         // per-game AllBestScoresForGame failures
	bestScoresBlock map[string]chan struct{} // per-game reads that park until ctx is done; closed once in flight
	grantErr        error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		players:         make(map[string]*domain.Player),
		games:           make(map[string]domain.Game),
		listings:        make(map[string]domain.CatalogItem),
		ownership:       make(map[string]domain.OwnershipRecord),
		bestScoresErr:   make(map[string]error),
		bestScoresBlock: make(map[string]chan struct{}),
	}
}

func (f *fakeStore) addScore(playerID, gameID string, value int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, domain.ScoreRecord{
		PlayerID: playerID,
		GameID:   gameID,
		Value:    value,
	})
}

func (f *fakeStore) GetPlayer(_ context.Context, playerID string) (*domain.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[playerID]
	if !ok {
		return nil, domain.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (f *fakeStore) DebitCoins(_ context.Context, playerID string, amount int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	player, ok := f.players[playerID]
	if !ok {
		return 0, domain.ErrPlayerNotFound
	}
	if player.CoinBalance < amount {
		return 0, domain.ErrInsufficientFunds
	}
	player.CoinBalance -= amount
	return player.CoinBalance, nil
}

func (f *fakeStore) GetGame(_ context.Context, gameID string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return &game, nil
}

func (f *fakeStore) ListGames(_ context.Context) ([]domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	games := make([]domain.Game, 0, len(f.games))
	for _, g := range f.games {
		games = append(games, g)
	}
	return games, nil
}

func (f *fakeStore) AppendScore(_ context.Context, rec domain.ScoreRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) BestScoreForPlayer(_ context.Context, playerID, gameID string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	game, ok := f.games[gameID]
	if !ok {
		return 0, false, domain.ErrGameNotFound
	}

	var best int64
	found := false
	for _, rec := range f.records {
		if rec.PlayerID != playerID || rec.GameID != gameID {
			continue
		}
		if !found || better(rec.Value, best, game.LowerIsBetter) {
			best = rec.Value
			found = true
		}
	}
	return best, found, nil
}

func (f *fakeStore) AllBestScoresForGame(ctx context.Context, gameID string) (map[string]int64, error) {
	f.mu.Lock()
	inFlight := f.bestScoresBlock[gameID]
	f.mu.Unlock()
	if inFlight != nil {
		close(inFlight)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.bestScoresErr[gameID]; err != nil {
		return nil, err
	}
	game, ok := f.games[gameID]
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	bests := make(map[string]int64)
	for _, rec := range f.records {
		if rec.GameID != gameID {
			continue
		}
		current, seen := bests[rec.PlayerID]
		if !seen || better(rec.Value, current, game.LowerIsBetter) {
			bests[rec.PlayerID] = rec.Value
		}
	}
	return bests, nil
}

func (f *fakeStore) GamesWithScores(_ context.Context, playerID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var gameIDs []string
	for _, rec := range f.records {
		if rec.PlayerID != playerID || seen[rec.GameID] {
			continue
		}
		seen[rec.GameID] = true
		gameIDs = append(gameIDs, rec.GameID)
	}
	return gameIDs, nil
}

func (f *fakeStore) GetActiveListing(_ context.Context, avatarID string) (*domain.CatalogItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.listings[avatarID]
	if !ok || !item.Active {
		return nil, domain.ErrItemNotAvailable
	}
	return &item, nil
}

func (f *fakeStore) OwnershipExists(_ context.Context, playerID, avatarID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ownership[playerID+"|"+avatarID]
	return ok, nil
}

func (f *fakeStore) GrantOwnership(_ context.Context, rec domain.OwnershipRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return f.grantErr
	}
	key := rec.PlayerID + "|" + rec.AvatarID
	if _, ok := f.ownership[key]; ok {
		return domain.ErrAlreadyOwned
	}
	f.ownership[key] = rec
	return nil
}

func better(a, b int64, lowerIsBetter bool) bool {
	if lowerIsBetter {
		return a < b
	}
	return a > b
}

// fakeBoards records snapshot updates.
type fakeBoards struct {
	mu      sync.Mutex
	updates []string
}

func (f *fakeBoards) SetScoreIfBetter(_ context.Context, gameID, playerID string, _ int64, _ bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, gameID+"/"+playerID)
	return true, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
