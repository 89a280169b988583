package domain

import "time"

// CatalogItem is a shop listing for an avatar. A listing is purchasable
// only while Active.
type CatalogItem struct {
	AvatarID string `json:"avatar_id"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url,omitempty"`
	Active   bool   `json:"active"`
}

// OwnershipRecord is created exactly once per (player, avatar) pair and is
// the sole source of truth for "owned".
type OwnershipRecord struct {
	PlayerID  string    `json:"player_id"`
	AvatarID  string    `json:"avatar_id"`
	Source    string    `json:"source"`
	PricePaid int64     `json:"price_paid"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnershipSourceShop marks ownership acquired through a shop purchase.
const OwnershipSourceShop = "shop"

// PurchaseReceipt is returned on a successful purchase.
type PurchaseReceipt struct {
	AvatarID   string `json:"avatar_id"`
	PricePaid  int64  `json:"price_paid"`
	NewBalance int64  `json:"new_balance"`
}

// PurchaseRequest represents a request to buy an avatar
type PurchaseRequest struct {
	PlayerID string `json:"player_id"`
	AvatarID string `json:"avatar_id"`
}
