package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arcade-leaderboard/internal/domain"
)

func TestPurchase_Success(t *testing.T) {
	store := newFakeStore()
	store.players["alice"] = &domain.Player{ID: "alice", CoinBalance: 500}
	store.listings["fox"] = domain.CatalogItem{AvatarID: "fox", Price: 500, Active: true}

	svc := NewShopService(store, store, testLogger())
	receipt, err := svc.Purchase(context.Background(), "alice", "fox")
	if err != nil {
		t.Fatalf("Purchase() error = %v", err)
	}

	if receipt.NewBalance != 0 {
		t.Errorf("NewBalance = %d, want 0", receipt.NewBalance)
	}
	if receipt.PricePaid != 500 {
		t.Errorf("PricePaid = %d, want 500", receipt.PricePaid)
	}

	rec, ok := store.ownership["alice|fox"]
	if !ok {
		t.Fatal("ownership record not created")
	}
	if rec.Source != domain.OwnershipSourceShop {
		t.Errorf("Source = %q, want %q", rec.Source, domain.OwnershipSourceShop)
	}
	if rec.PricePaid != 500 {
		t.Errorf("ownership PricePaid = %d, want 500", rec.PricePaid)
	}
}

func TestPurchase_RepeatFailsAlreadyOwned(t *testing.T) {
	store := newFakeStore()
	store.players["alice"] = &domain.Player{ID: "alice", CoinBalance: 1000}
	store.listings["fox"] = domain.CatalogItem{AvatarID: "fox", Price: 500, Active: true}

	svc := NewShopService(store, store, testLogger())
	if _, err := svc.Purchase(context.Background(), "alice", "fox"); err != nil {
		t.Fatalf("first Purchase() error = %v", err)
	}

	_, err := svc.Purchase(context.Background(), "alice", "fox")
	if !errors.Is(err, domain.ErrAlreadyOwned) {
		t.Errorf("second Purchase() error = %v, want ErrAlreadyOwned", err)
	}
	if store.players["alice"].CoinBalance != 500 {
		t.Errorf("balance = %d, want 500 (second purchase must not debit)", store.players["alice"].CoinBalance)
	}
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	store := newFakeStore()
	store.players["alice"] = &domain.Player{ID: "alice", CoinBalance: 499}
	store.listings["fox"] = domain.CatalogItem{AvatarID: "fox", Price: 500, Active: true}

	svc := NewShopService(store, store, testLogger())
	_, err := svc.Purchase(context.Background(), "alice", "fox")
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Errorf("Purchase() error = %v, want ErrInsufficientFunds", err)
	}
	if store.players["alice"].CoinBalance != 499 {
		t.Errorf("balance = %d, want unchanged 499", store.players["alice"].CoinBalance)
	}
	if len(store.ownership) != 0 {
		t.Error("ownership must not be granted on rejected purchase")
	}
}

func TestPurchase_InactiveListing(t *testing.T) {
	store := newFakeStore()
	store.players["alice"] = &domain.Player{ID: "alice", CoinBalance: 1000}
	store.listings["fox"] = domain.CatalogItem{AvatarID: "fox", Price: 500, Active: false}

	svc := NewShopService(store, store, testLogger())
	_, err := svc.Purchase(context.Background(), "alice", "fox")
	if !errors.Is(err, domain.ErrItemNotAvailable) {
		t.Errorf("Purchase() error = %v, want ErrItemNotAvailable", err)
	}
}

func TestPurchase_MissingListing(t *testing.T) {
	store := newFakeStore()
	store.players["alice"] = &domain.Player{ID: "alice", CoinBalance: 1000}

	svc := NewShopService(store, store, testLogger())
	_, err := svc.Purchase(context.Background(), "alice", "ghost")
	if !errors.Is(err, domain.ErrItemNotAvailable) {
		t.Errorf("Purchase() error = %v, want ErrItemNotAvailable", err)
	}
}

func TestPurchase_UnknownPlayer(t *testing.T) {
	store := newFakeStore()
	store.listings["fox"] = domain.CatalogItem{AvatarID: "fox", Price: 500, Active: true}

	svc := NewShopService(store, store, testLogger())
	_, err := svc.Purchase(context.Background(), "ghost", "fox")
	if !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Errorf("Purchase() error = %v, want ErrPlayerNotFound", err)
	}
}

func TestPurchase_GrantFailureIsSurfaced(t *testing.T) {
	store := newFakeStore()
	store.players["alice"] = &domain.Player{ID: "alice", CoinBalance: 500}
	store.listings["fox"] = domain.CatalogItem{AvatarID: "fox", Price: 500, Active: true}
	grantErr := errors.New("store unreachable")
	store.grantErr = grantErr

	svc := NewShopService(store, store, testLogger())
	_, err := svc.Purchase(context.Background(), "alice", "fox")
	if !errors.Is(err, grantErr) {
		t.Errorf("Purchase() error = %v, want grant failure surfaced", err)
	}
}
