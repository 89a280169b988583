package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arcade-leaderboard/internal/domain"
)

func TestRankOf_LonePlayerHasRankOne(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	store.addScore("alice", "pinball", 300)

	svc := NewRankService(store, store, testLogger())
	got, err := svc.RankOf(context.Background(), "alice", "pinball")
	if err != nil {
		t.Fatalf("RankOf() error = %v", err)
	}
	if got.Rank != 1 {
		t.Errorf("Rank = %d, want 1", got.Rank)
	}
	if got.Score != 300 {
		t.Errorf("Score = %d, want 300", got.Score)
	}
}

func TestRankOf_HigherIsBetter(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	store.addScore("alice", "pinball", 100)
	store.addScore("bob", "pinball", 200)
	store.addScore("carol", "pinball", 150)
	store.addScore("dave", "pinball", 50)

	svc := NewRankService(store, store, testLogger())
	got, err := svc.RankOf(context.Background(), "alice", "pinball")
	if err != nil {
		t.Fatalf("RankOf() error = %v", err)
	}
	if got.Rank != 3 {
		t.Errorf("Rank = %d, want 3", got.Rank)
	}
}

func TestRankOf_LowerIsBetter(t *testing.T) {
	store := newFakeStore()
	store.games["sprint"] = domain.Game{ID: "sprint", Name: "Sprint", LowerIsBetter: true}
	store.addScore("alice", "sprint", 42)
	store.addScore("bob", "sprint", 38)
	store.addScore("carol", "sprint", 55)

	svc := NewRankService(store, store, testLogger())
	got, err := svc.RankOf(context.Background(), "alice", "sprint")
	if err != nil {
		t.Fatalf("RankOf() error = %v", err)
	}
	if got.Rank != 2 {
		t.Errorf("Rank = %d, want 2 (only bob's 38 beats 42)", got.Rank)
	}
}

func TestRankOf_BestOfManyRecords(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	store.addScore("alice", "pinball", 100)
	store.addScore("alice", "pinball", 400)
	store.addScore("alice", "pinball", 250)
	store.addScore("bob", "pinball", 300)

	svc := NewRankService(store, store, testLogger())
	got, err := svc.RankOf(context.Background(), "alice", "pinball")
	if err != nil {
		t.Fatalf("RankOf() error = %v", err)
	}
	if got.Score != 400 {
		t.Errorf("Score = %d, want best record 400", got.Score)
	}
	if got.Rank != 1 {
		t.Errorf("Rank = %d, want 1", got.Rank)
	}
}

func TestRankOf_TiedPlayersShareRank(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	store.addScore("alice", "pinball", 500)
	store.addScore("bob", "pinball", 500)
	store.addScore("carol", "pinball", 100)

	svc := NewRankService(store, store, testLogger())

	for _, playerID := range []string{"alice", "bob"} {
		got, err := svc.RankOf(context.Background(), playerID, "pinball")
		if err != nil {
			t.Fatalf("RankOf(%s) error = %v", playerID, err)
		}
		if got.Rank != 1 {
			t.Errorf("RankOf(%s).Rank = %d, want 1 (ties share rank)", playerID, got.Rank)
		}
	}

	// Two strictly better scores, so carol ranks third; no rank is skipped
	// in the tied players' favor.
	got, err := svc.RankOf(context.Background(), "carol", "pinball")
	if err != nil {
		t.Fatalf("RankOf(carol) error = %v", err)
	}
	if got.Rank != 3 {
		t.Errorf("RankOf(carol).Rank = %d, want 3", got.Rank)
	}
}

func TestRankOf_NoScoreIsAbsent(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	store.addScore("bob", "pinball", 200)

	svc := NewRankService(store, store, testLogger())
	_, err := svc.RankOf(context.Background(), "alice", "pinball")
	if !errors.Is(err, domain.ErrPlayerNotRanked) {
		t.Errorf("RankOf() error = %v, want ErrPlayerNotRanked", err)
	}
}

func TestRankOf_StoreErrorPropagates(t *testing.T) {
	store := newFakeStore()
	store.games["pinball"] = domain.Game{ID: "pinball", Name: "Pinball"}
	store.addScore("alice", "pinball", 300)

	storeErr := errors.New("store unreachable")
	store.bestScoresErr["pinball"] = storeErr

	// A failed field read must never produce a rank; the error surfaces so
	// callers can drop or retry instead of trusting a partial comparison set.
	svc := NewRankService(store, store, testLogger())
	_, err := svc.RankOf(context.Background(), "alice", "pinball")
	if !errors.Is(err, storeErr) {
		t.Errorf("RankOf() error = %v, want wrapped %v", err, storeErr)
	}
}

func TestRankOf_UnknownGame(t *testing.T) {
	store := newFakeStore()
	svc := NewRankService(store, store, testLogger())
	_, err := svc.RankOf(context.Background(), "alice", "missing")
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Errorf("RankOf() error = %v, want ErrGameNotFound", err)
	}
}
