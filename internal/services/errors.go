package services

import (
	"errors"

	"vf4-sportsbook-backend/internal/ledger"
)

// Rejection taxonomy surfaced to callers. All are local, recoverable and
// user-visible; none partially mutate ledger state.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrAlreadySettled   = errors.New("wager already settled")
	ErrNotFound         = errors.New("wager not found")

	// ErrInsufficientFunds is the ledger sentinel; re-exported so handlers
	// match against a single package.
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
)
