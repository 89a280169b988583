package domain

import "time"

// Player represents a player in the arcade
type Player struct {
	ID               string    `json:"id"`
	DisplayName      string    `json:"display_name"`
	XP               int64     `json:"xp"`
	CoinBalance      int64     `json:"coin_balance"`
	EquippedAvatarID *string   `json:"equipped_avatar_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Game is static reference data describing one arcade game.
// LowerIsBetter controls ranking direction: true for time-based games
// (golf, speedrun), false for point-based ones.
type Game struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LowerIsBetter bool   `json:"lower_is_better"`
}

// ScoreRecord is a single submitted score. Records are append-only;
// best scores are derived from them on demand.
type ScoreRecord struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	GameID    string    `json:"game_id"`
	Value     int64     `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// ScoreSubmission represents a request to submit a score
type ScoreSubmission struct {
	PlayerID string `json:"player_id"`
	GameID   string `json:"game_id"`
	Value    int64  `json:"value"`
}

// BatchScoreSubmission represents multiple score submissions
type BatchScoreSubmission struct {
	Scores []ScoreSubmission `json:"scores"`
}
