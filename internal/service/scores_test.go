package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arcade-leaderboard/internal/domain"
)

func TestSubmitScore_AppendsRecord(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	boards := &fakeBoards{}

	svc := NewScoreService(store, store, testLogger())
	svc.SetBoards(boards)

	err := svc.SubmitScore(context.Background(), domain.ScoreSubmission{
		PlayerID: "alice",
		GameID:   "pinball",
		Value:    300,
	})
	if err != nil {
		t.Fatalf("SubmitScore() error = %v", err)
	}

	if len(store.records) != 1 {
		t.Fatalf("records = %d, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.ID == "" {
		t.Error("record ID not assigned")
	}
	if rec.PlayerID != "alice" || rec.GameID != "pinball" || rec.Value != 300 {
		t.Errorf("record = %+v", rec)
	}
	if len(boards.updates) != 1 || boards.updates[0] != "pinball/alice" {
		t.Errorf("board updates = %v, want [pinball/alice]", boards.updates)
	}
}

func TestSubmitScore_InvalidRequest(t *testing.T) {
	store := newFakeStore()
	svc := NewScoreService(store, store, testLogger())

	err := svc.SubmitScore(context.Background(), domain.ScoreSubmission{GameID: "pinball"})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("SubmitScore() error = %v, want ErrInvalidRequest", err)
	}
}

func TestSubmitScore_UnknownGame(t *testing.T) {
	store := newFakeStore()
	svc := NewScoreService(store, store, testLogger())

	err := svc.SubmitScore(context.Background(), domain.ScoreSubmission{
		PlayerID: "alice",
		GameID:   "missing",
		Value:    1,
	})
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Errorf("SubmitScore() error = %v, want ErrGameNotFound", err)
	}
}

func TestSubmitScoreBatch_ContinuesPastFailures(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	svc := NewScoreService(store, store, testLogger())

	err := svc.SubmitScoreBatch(context.Background(), domain.BatchScoreSubmission{
		Scores: []domain.ScoreSubmission{
			{PlayerID: "alice", GameID: "pinball", Value: 100},
			{PlayerID: "bob", GameID: "missing", Value: 200},
			{PlayerID: "carol", GameID: "pinball", Value: 300},
		},
	})
	if err != nil {
		t.Fatalf("SubmitScoreBatch() error = %v", err)
	}
	if len(store.records) != 2 {
		t.Errorf("records = %d, want 2 (bad submission skipped)", len(store.records))
	}
}
