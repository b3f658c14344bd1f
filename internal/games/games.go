package games

import (
	"errors"

	"vf4-sportsbook-backend/internal/models"
)

// ErrInvalidParams marks malformed or out-of-range game parameters.
var ErrInvalidParams = errors.New("invalid game parameters")

// MinMultiplier is the floor applied to every quoted multiplier so that
// near-certain selections never pay out below stake-plus-one-percent.
const MinMultiplier = 1.01

// Outcome is a resolved minigame round. Multiplier carries the quoted
// multiplier on a win and 0 on a loss; payout follows the same rule.
type Outcome struct {
	Win         bool
	Multiplier  float64
	PayoutCents int64
	Detail      map[string]any
}

func won(stakeCents int64, multiplier float64, detail map[string]any) Outcome {
	return Outcome{
		Win:         true,
		Multiplier:  multiplier,
		PayoutCents: models.PayoutCents(stakeCents, multiplier),
		Detail:      detail,
	}
}

func lost(detail map[string]any) Outcome {
	return Outcome{Detail: detail}
}
