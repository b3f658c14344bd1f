package models

type LoginRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
	Email    string `json:"email" binding:"required,email"`
}

type SportsBetRequest struct {
	MatchID    string  `json:"match_id" binding:"required"`
	Type       string  `json:"type" binding:"required"`
	Selection  string  `json:"selection" binding:"required"`
	Odds       float64 `json:"odds" binding:"required"`
	StakeCents int64   `json:"stake_cents" binding:"required"`
}

type SettleRequest struct {
	Won *bool `json:"won" binding:"required"`
}

// MinigameParams holds the union of per-game parameters; each game reads
// only the fields it needs.
type MinigameParams struct {
	// coinflip
	Side string `json:"side,omitempty"` // "heads" | "tails"

	// crash: auto-cashout target multiplier
	Cashout float64 `json:"cashout,omitempty"`

	// dice
	Target     int    `json:"target,omitempty"`     // 5..95
	Prediction string `json:"prediction,omitempty"` // "over" | "under"

	// penalty
	Direction string `json:"direction,omitempty"` // "left" | "center" | "right"
	Height    string `json:"height,omitempty"`    // "low" | "mid" | "high"
}

type MinigameRequest struct {
	Game       string         `json:"game" binding:"required"`
	StakeCents int64          `json:"stake_cents" binding:"required"`
	Params     MinigameParams `json:"params"`
}

type VerificationData struct {
	ClientSeed   string `json:"client_seed"`
	ServerHash   string `json:"server_hash"`
	CurrentNonce uint64 `json:"current_nonce"`
}
