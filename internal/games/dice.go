package games

import (
	"fmt"
	"math"
)

const (
	// Targets are clamped away from 0 and 100 so win probability is
	// never exactly 0 or 1.
	MinDiceTarget = 5
	MaxDiceTarget = 95

	diceEdge = 0.97
)

const (
	PredictOver  = "over"
	PredictUnder = "under"
)

// DiceMultiplier quotes the payout multiplier for a target/prediction pair:
// max(1.01, 0.97/winChance), a 3% house edge over fair odds.
func DiceMultiplier(target int, prediction string) (float64, error) {
	if target < MinDiceTarget || target > MaxDiceTarget {
		return 0, fmt.Errorf("%w: target must be in [%d, %d]", ErrInvalidParams, MinDiceTarget, MaxDiceTarget)
	}

	var winChance float64
	switch prediction {
	case PredictOver:
		winChance = float64(100-target) / 100
	case PredictUnder:
		winChance = float64(target) / 100
	default:
		return 0, fmt.Errorf("%w: prediction must be over or under", ErrInvalidParams)
	}

	return math.Max(MinMultiplier, diceEdge/winChance), nil
}

// PlayDice rolls once in [0,100) and compares against the target; a roll
// exactly on the target loses either way.
func PlayDice(stakeCents int64, target int, prediction string, src Source) (Outcome, error) {
	multiplier, err := DiceMultiplier(target, prediction)
	if err != nil {
		return Outcome{}, err
	}

	roll := src.Float64() * 100

	win := false
	if prediction == PredictOver {
		win = roll > float64(target)
	} else {
		win = roll < float64(target)
	}

	detail := map[string]any{"roll": roll, "target": target, "prediction": prediction}
	if !win {
		return lost(detail), nil
	}
	return won(stakeCents, multiplier, detail), nil
}
