package games

import (
	"fmt"
	"math"
)

// crashEdge bakes a ~1% house edge into the crash-point distribution.
const crashEdge = 0.99

// MaxCrashCashout caps the auto-cashout target; the distribution is
// heavy-tailed but payouts are bounded.
const MaxCrashCashout = 1000.0

// CrashPoint maps a uniform u in (0,1] onto the round's crash multiplier
// via inverse-transform sampling: max(1.0, 0.99/u).
func CrashPoint(u float64) float64 {
	return math.Max(1.0, crashEdge/u)
}

// PlayCrash resolves a round against an auto-cashout target: the player
// wins stake x target iff the target is reached before the crash point.
func PlayCrash(stakeCents int64, cashout float64, src Source) (Outcome, error) {
	if cashout < MinMultiplier || cashout > MaxCrashCashout {
		return Outcome{}, fmt.Errorf("%w: cashout must be in [%.2f, %.2f]", ErrInvalidParams, MinMultiplier, MaxCrashCashout)
	}

	// Draws are in [0,1); flip to (0,1] so the division is always defined.
	u := 1 - src.Float64()
	crashPoint := CrashPoint(u)

	detail := map[string]any{"crash_point": crashPoint, "cashout": cashout}
	if cashout >= crashPoint {
		return lost(detail), nil
	}
	return won(stakeCents, cashout, detail), nil
}
