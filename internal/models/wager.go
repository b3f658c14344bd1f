package models

import "time"

type BetType string

const (
	BetTypeMatchResult BetType = "match_result"
	BetTypeOverUnder   BetType = "over_under"
	BetTypeBTTS        BetType = "btts"
	BetTypeVF4Result   BetType = "vf4_result"
	BetTypeFirstGoal   BetType = "first_goal"
)

type WagerStatus string

const (
	WagerStatusPending WagerStatus = "pending"
	WagerStatusWon     WagerStatus = "won"
	WagerStatusLost    WagerStatus = "lost"
)

// Wager is a fixed-odds sports bet. Odds, stake and selection are immutable
// after placement; only Status moves, pending -> won or pending -> lost.
type Wager struct {
	ID        string  `json:"id" redis:"id"`
	AccountID string  `json:"account_id" redis:"account_id"`
	MatchID   string  `json:"match_id" redis:"match_id"`
	Type      BetType `json:"type" redis:"type"`
	Selection string  `json:"selection" redis:"selection"`

	Odds                 float64 `json:"odds" redis:"odds"`
	StakeCents           int64   `json:"stake_cents" redis:"stake_cents"`
	PotentialPayoutCents int64   `json:"potential_payout_cents" redis:"potential_payout_cents"`

	Status    WagerStatus `json:"status" redis:"status"`
	PlacedAt  time.Time   `json:"placed_at" redis:"placed_at"`
	SettledAt time.Time   `json:"settled_at,omitempty" redis:"settled_at"`
}

func (t BetType) Valid() bool {
	switch t {
	case BetTypeMatchResult, BetTypeOverUnder, BetTypeBTTS, BetTypeVF4Result, BetTypeFirstGoal:
		return true
	}
	return false
}
