package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arcade-leaderboard/internal/domain"
)

// ShopService executes avatar purchases against the shared coin balance and
// ownership set.
type ShopService struct {
	players PlayerStore
	shop    ShopStore
	logger  *slog.Logger
}

// NewShopService creates a new shop service
func NewShopService(players PlayerStore, shop ShopStore, logger *slog.Logger) *ShopService {
	return &ShopService{
		players: players,
		shop:    shop,
		logger:  logger,
	}
}

// Purchase runs the check-then-mutate purchase sequence: active listing
// lookup, ownership check, balance check, conditional debit, ownership
// grant. Each step reads fresh state. The debit is a compare-and-swap at
// the storage layer and the grant relies on the (player, avatar) unique
// constraint, so concurrent purchases cannot double-spend or double-grant.
// The operation is not idempotent: a repeat call fails with ErrAlreadyOwned.
func (s *ShopService) Purchase(ctx context.Context, playerID, avatarID string) (*domain.PurchaseReceipt, error) {
	listing, err := s.shop.GetActiveListing(ctx, avatarID)
	if err != nil {
		return nil, err
	}

	owned, err := s.shop.OwnershipExists(ctx, playerID, avatarID)
	if err != nil {
		return nil, fmt.Errorf("checking ownership: %w", err)
	}
	if owned {
		return nil, domain.ErrAlreadyOwned
	}

	player, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if player.CoinBalance < listing.Price {
		return nil, domain.ErrInsufficientFunds
	}

	newBalance, err := s.players.DebitCoins(ctx, playerID, listing.Price)
	if err != nil {
		return nil, err
	}

	err = s.shop.GrantOwnership(ctx, domain.OwnershipRecord{
		PlayerID:  playerID,
		AvatarID:  avatarID,
		Source:    domain.OwnershipSourceShop,
		PricePaid: listing.Price,
		CreatedAt: time.Now(),
	})
	if err != nil {
		// Coins are already spent at this point. Surface the failure loudly
		// so the inconsistency can be reconciled; never swallow it.
		s.logger.Error("ownership grant failed after debit",
			"player_id", playerID,
			"avatar_id", avatarID,
			"price", listing.Price,
			"error", err,
		)
		return nil, err
	}

	return &domain.PurchaseReceipt{
		AvatarID:   avatarID,
		PricePaid:  listing.Price,
		NewBalance: newBalance,
	}, nil
}
