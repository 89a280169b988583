package domain

// RankedScore is a player's best score in one game together with its
// global standing among all players' best scores for that game.
type RankedScore struct {
	GameID   string `json:"game_id"`
	GameName string `json:"game_name"`
	Rank     int64  `json:"rank"`
	Score    int64  `json:"score"`
}

// CareerStats are totals across every game the player has been ranked in,
// not just the games shown on the profile card.
type CareerStats struct {
	TotalRank1    int `json:"total_rank_1"`
	TotalRankTop5 int `json:"total_rank_top5"`
}

// PublicProfile is the profile card payload: the player, their derived
// level and progress, their best-ranked games, and career totals.
type PublicProfile struct {
	Player      Player        `json:"player"`
	Level       int           `json:"level"`
	XPProgress  float64       `json:"xp_progress"`
	TopGames    []RankedScore `json:"top_games"`
	CareerStats CareerStats   `json:"career_stats"`
}

// BoardEntry is a single row of a per-game top-N board snapshot.
type BoardEntry struct {
	Position int64  `json:"position"`
	PlayerID string `json:"player_id"`
	Score    int64  `json:"score"`
}
