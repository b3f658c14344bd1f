package games

import "fmt"

type CoinSide string

const (
	CoinHeads CoinSide = "heads"
	CoinTails CoinSide = "tails"
)

// CoinflipMultiplier is the fixed payout on a win. Fair odds would pay
// 2.0x; 1.95x on a 49.5% win chance is the house edge.
const CoinflipMultiplier = 1.95

const coinflipWinChance = 0.495

// PlayCoinflip resolves a single flip with one draw: the coin lands on the
// picked side iff the draw falls below the win chance.
func PlayCoinflip(stakeCents int64, side CoinSide, src Source) (Outcome, error) {
	if side != CoinHeads && side != CoinTails {
		return Outcome{}, fmt.Errorf("%w: side must be heads or tails", ErrInvalidParams)
	}

	landed := side
	if src.Float64() >= coinflipWinChance {
		if side == CoinHeads {
			landed = CoinTails
		} else {
			landed = CoinHeads
		}
	}

	detail := map[string]any{"landed": landed}
	if landed != side {
		return lost(detail), nil
	}
	return won(stakeCents, CoinflipMultiplier, detail), nil
}
