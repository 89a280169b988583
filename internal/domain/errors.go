package domain

import "errors"

// Domain errors
var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrGameNotFound      = errors.New("game not found")
	ErrPlayerNotRanked   = errors.New("player has no score for this game")
	ErrItemNotAvailable  = errors.New("item is not available for purchase")
	ErrAlreadyOwned      = errors.New("avatar already owned")
	ErrInsufficientFunds = errors.New("insufficient coin balance")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInternalError     = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrGameNotFound) ||
		errors.Is(err, ErrPlayerNotRanked)
}

// IsPurchaseRejection reports whether an error is a terminal, user-facing
// purchase outcome rather than a storage failure. Rejections are reported
// verbatim to the caller and never retried.
func IsPurchaseRejection(err error) bool {
	return errors.Is(err, ErrItemNotAvailable) ||
		errors.Is(err, ErrAlreadyOwned) ||
		errors.Is(err, ErrInsufficientFunds)
}
