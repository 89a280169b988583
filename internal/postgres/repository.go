package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcade-leaderboard/internal/config"
	"github.com/arcade-leaderboard/internal/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint errors.
const uniqueViolation = "23505"

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			id VARCHAR(64) PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL,
			xp BIGINT NOT NULL DEFAULT 0 CHECK (xp >= 0),
			coin_balance BIGINT NOT NULL DEFAULT 0 CHECK (coin_balance >= 0),
			equipped_avatar_id VARCHAR(64),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			lower_is_better BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS scores (
			id VARCHAR(36) PRIMARY KEY,
			game_id VARCHAR(64) NOT NULL REFERENCES games(id),
			player_id VARCHAR(64) NOT NULL,
			value BIGINT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_items (
			avatar_id VARCHAR(64) PRIMARY KEY,
			price BIGINT NOT NULL CHECK (price >= 0),
			image_url TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS avatar_ownership (
			player_id VARCHAR(64) NOT NULL,
			avatar_id VARCHAR(64) NOT NULL,
			source VARCHAR(32) NOT NULL,
			price_paid BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (player_id, avatar_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_game_player ON scores(game_id, player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id, created_at)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// GetPlayer retrieves a player by ID
func (r *Repository) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	query := `
		SELECT id, display_name, xp, coin_balance, equipped_avatar_id, created_at, updated_at
		FROM players
		WHERE id = $1
	`
	var player domain.Player
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&player.ID,
		&player.DisplayName,
		&player.XP,
		&player.CoinBalance,
		&player.EquippedAvatarID,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &player, nil
}

// DebitCoins deducts amount from the player's balance and returns the new
// balance. The write is conditional on the balance covering the amount, so
// two concurrent debits cannot drive the balance negative.
func (r *Repository) DebitCoins(ctx context.Context, playerID string, amount int64) (int64, error) {
	query := `
		UPDATE players
		SET coin_balance = coin_balance - $2, updated_at = $3
		WHERE id = $1 AND coin_balance >= $2
		RETURNING coin_balance
	`
	var newBalance int64
	err := r.pool.QueryRow(ctx, query, playerID, amount, time.Now()).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the player vanished or the balance no longer covers
			// the price; distinguish so callers report the right outcome.
			if _, getErr := r.GetPlayer(ctx, playerID); getErr != nil {
				return 0, getErr
			}
			return 0, domain.ErrInsufficientFunds
		}
		return 0, fmt.Errorf("debiting coins: %w", err)
	}
	return newBalance, nil
}

// GetGame retrieves a game by ID
func (r *Repository) GetGame(ctx context.Context, gameID string) (*domain.Game, error) {
	query := `SELECT id, name, lower_is_better FROM games WHERE id = $1`
	var game domain.Game
	err := r.pool.QueryRow(ctx, query, gameID).Scan(&game.ID, &game.Name, &game.LowerIsBetter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return &game, nil
}

// ListGames retrieves all games
func (r *Repository) ListGames(ctx context.Context) ([]domain.Game, error) {
	query := `SELECT id, name, lower_is_better FROM games ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var game domain.Game
		if err := rows.Scan(&game.ID, &game.Name, &game.LowerIsBetter); err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// AppendScore inserts a score record. Records are never updated or deleted.
func (r *Repository) AppendScore(ctx context.Context, rec domain.ScoreRecord) error {
	query := `
		INSERT INTO scores (id, game_id, player_id, value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, rec.ID, rec.GameID, rec.PlayerID, rec.Value, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending score: %w", err)
	}
	return nil
}

// BestScoreForPlayer returns the extremal score value for a (player, game)
// pair per the game's direction flag. The second return is false when the
// player has no score records for the game.
func (r *Repository) BestScoreForPlayer(ctx context.Context, playerID, gameID string) (int64, bool, error) {
	game, err := r.GetGame(ctx, gameID)
	if err != nil {
		return 0, false, err
	}

	query := `SELECT MAX(value) FROM scores WHERE player_id = $1 AND game_id = $2`
	if game.LowerIsBetter {
		query = `SELECT MIN(value) FROM scores WHERE player_id = $1 AND game_id = $2`
	}

	var best *int64
	if err := r.pool.QueryRow(ctx, query, playerID, gameID).Scan(&best); err != nil {
		return 0, false, fmt.Errorf("getting best score: %w", err)
	}
	if best == nil {
		// Empty record set reports absent, not zero.
		return 0, false, nil
	}
	return *best, true, nil
}

// AllBestScoresForGame returns every player's best score for a game.
func (r *Repository) AllBestScoresForGame(ctx context.Context, gameID string) (map[string]int64, error) {
	game, err := r.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	query := `SELECT player_id, MAX(value) FROM scores WHERE game_id = $1 GROUP BY player_id`
	if game.LowerIsBetter {
		query = `SELECT player_id, MIN(value) FROM scores WHERE game_id = $1 GROUP BY player_id`
	}

	rows, err := r.pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting best scores: %w", err)
	}
	defer rows.Close()

	bests := make(map[string]int64)
	for rows.Next() {
		var playerID string
		var value int64
		if err := rows.Scan(&playerID, &value); err != nil {
			return nil, fmt.Errorf("scanning best score: %w", err)
		}
		bests[playerID] = value
	}
	// A dropped connection ends the loop without a Scan error; a truncated
	// result must surface as an error, not as a smaller field to rank against.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting best scores: %w", err)
	}
	return bests, nil
}

// GamesWithScores returns the IDs of games the player has at least one score
// in, ordered by when the player first played them.
func (r *Repository) GamesWithScores(ctx context.Context, playerID string) ([]string, error) {
	query := `
		SELECT game_id
		FROM scores
		WHERE player_id = $1
		GROUP BY game_id
		ORDER BY MIN(created_at)
	`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting games with scores: %w", err)
	}
	defer rows.Close()

	var gameIDs []string
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("scanning game id: %w", err)
		}
		gameIDs = append(gameIDs, gameID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting games with scores: %w", err)
	}
	return gameIDs, nil
}

// GetActiveListing retrieves the active catalog listing for an avatar
func (r *Repository) GetActiveListing(ctx context.Context, avatarID string) (*domain.CatalogItem, error) {
	query := `
		SELECT avatar_id, price, COALESCE(image_url, ''), active
		FROM catalog_items
		WHERE avatar_id = $1 AND active
	`
	var item domain.CatalogItem
	err := r.pool.QueryRow(ctx, query, avatarID).Scan(&item.AvatarID, &item.Price, &item.ImageURL, &item.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotAvailable
		}
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return &item, nil
}

// ListActiveListings retrieves all active catalog listings
func (r *Repository) ListActiveListings(ctx context.Context) ([]domain.CatalogItem, error) {
	query := `
		SELECT avatar_id, price, COALESCE(image_url, ''), active
		FROM catalog_items
		WHERE active
		ORDER BY avatar_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		if err := rows.Scan(&item.AvatarID, &item.Price, &item.ImageURL, &item.Active); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	return items, nil
}

// OwnershipExists reports whether an ownership record exists for the pair
func (r *Repository) OwnershipExists(ctx context.Context, playerID, avatarID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM avatar_ownership WHERE player_id = $1 AND avatar_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, playerID, avatarID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking ownership: %w", err)
	}
	return exists, nil
}

// GrantOwnership inserts an ownership record. The (player_id, avatar_id)
// primary key is the race-safety backstop for concurrent purchases of the
// same avatar: a duplicate insert maps to ErrAlreadyOwned.
func (r *Repository) GrantOwnership(ctx context.Context, rec domain.OwnershipRecord) error {
	query := `
		INSERT INTO avatar_ownership (player_id, avatar_id, source, price_paid, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, rec.PlayerID, rec.AvatarID, rec.Source, rec.PricePaid, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyOwned
		}
		return fmt.Errorf("granting ownership: %w", err)
	}
	return nil
}

// GetOwnedAvatars returns the avatar IDs a player owns
func (r *Repository) GetOwnedAvatars(ctx context.Context, playerID string) ([]string, error) {
	query := `SELECT avatar_id FROM avatar_ownership WHERE player_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting owned avatars: %w", err)
	}
	defer rows.Close()

	var avatarIDs []string
	for rows.Next() {
		var avatarID string
		if err := rows.Scan(&avatarID); err != nil {
			return nil, fmt.Errorf("scanning avatar id: %w", err)
		}
		avatarIDs = append(avatarIDs, avatarID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting owned avatars: %w", err)
	}
	return avatarIDs, nil
}
