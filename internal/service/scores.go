package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arcade-leaderboard/internal/domain"
)

// ScoreService ingests score submissions from HTTP and Kafka and appends
// them to the durable record set.
type ScoreService struct {
	games  GameStore
	scores ScoreStore
	boards BoardView
	logger *slog.Logger
}

// NewScoreService creates a new score service
func NewScoreService(games GameStore, scores ScoreStore, logger *slog.Logger) *ScoreService {
	return &ScoreService{
		games:  games,
		scores: scores,
		logger: logger,
	}
}

// SetBoards attaches a board view that receives best-effort snapshot
// updates as scores arrive.
func (s *ScoreService) SetBoards(boards BoardView) {
	s.boards = boards
}

// SubmitScore appends one score record
func (s *ScoreService) SubmitScore(ctx context.Context, submission domain.ScoreSubmission) error {
	if submission.PlayerID == "" || submission.GameID == "" {
		return domain.ErrInvalidRequest
	}

	game, err := s.games.GetGame(ctx, submission.GameID)
	if err != nil {
		return fmt.Errorf("getting game: %w", err)
	}

	rec := domain.ScoreRecord{
		ID:        uuid.New().String(),
		PlayerID:  submission.PlayerID,
		GameID:    submission.GameID,
		Value:     submission.Value,
		CreatedAt: time.Now(),
	}
	if err := s.scores.AppendScore(ctx, rec); err != nil {
		return fmt.Errorf("appending score: %w", err)
	}

	// Snapshot update is best effort; the periodic rebuild repairs any gap.
	if s.boards != nil {
		higherIsBetter := !game.LowerIsBetter
		if _, err := s.boards.SetScoreIfBetter(ctx, game.ID, submission.PlayerID, submission.Value, higherIsBetter); err != nil {
			s.logger.Warn("failed to update board snapshot",
				"game_id", game.ID,
				"player_id", submission.PlayerID,
				"error", err,
			)
		}
	}

	return nil
}

// SubmitScoreBatch appends multiple score records, continuing past
// individual failures.
func (s *ScoreService) SubmitScoreBatch(ctx context.Context, batch domain.BatchScoreSubmission) error {
	for _, submission := range batch.Scores {
		if err := s.SubmitScore(ctx, submission); err != nil {
			s.logger.Error("failed to submit score in batch",
				"player_id", submission.PlayerID,
				"game_id", submission.GameID,
				"error", err,
			)
		}
	}
	return nil
}
