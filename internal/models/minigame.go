package models

import "time"

type GameKind string

const (
	GameKindCrash    GameKind = "crash"
	GameKindCoinflip GameKind = "coinflip"
	GameKindDice     GameKind = "dice"
	GameKindPenalty  GameKind = "penalty"
)

type GameResult string

const (
	GameResultWin  GameResult = "win"
	GameResultLose GameResult = "lose"
)

// MinigameOutcome is terminal at creation time; minigames have no pending state.
// Multiplier is 0 on a loss and the quoted multiplier on a win.
type MinigameOutcome struct {
	ID          string     `json:"id" redis:"id"`
	AccountID   string     `json:"account_id" redis:"account_id"`
	Game        GameKind   `json:"game" redis:"game"`
	StakeCents  int64      `json:"stake_cents" redis:"stake_cents"`
	Multiplier  float64    `json:"multiplier" redis:"multiplier"`
	Result      GameResult `json:"result" redis:"result"`
	PayoutCents int64      `json:"payout_cents" redis:"payout_cents"`

	// Detail carries per-game resolution data (crash point, dice roll,
	// keeper cell) for display and fairness verification.
	Detail map[string]any `json:"detail,omitempty" redis:"detail"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
}

func (k GameKind) Valid() bool {
	switch k {
	case GameKindCrash, GameKindCoinflip, GameKindDice, GameKindPenalty:
		return true
	}
	return false
}
