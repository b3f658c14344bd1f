package games

import "fmt"

type Direction string

const (
	DirLeft   Direction = "left"
	DirCenter Direction = "center"
	DirRight  Direction = "right"
)

type Height string

const (
	HeightLow  Height = "low"
	HeightMid  Height = "mid"
	HeightHigh Height = "high"
)

var penaltyDirections = []Direction{DirLeft, DirCenter, DirRight}
var penaltyHeights = []Height{HeightLow, HeightMid, HeightHigh}

// Center cells pay more: keepers are assumed biased toward the sides.
var penaltyMultipliers = map[Direction]map[Height]float64{
	DirLeft:   {HeightLow: 2.5, HeightMid: 3.2, HeightHigh: 4.0},
	DirCenter: {HeightLow: 3.8, HeightMid: 5.0, HeightHigh: 4.5},
	DirRight:  {HeightLow: 2.5, HeightMid: 3.2, HeightHigh: 4.0},
}

// PenaltyMultiplier quotes the payout for a kick cell.
func PenaltyMultiplier(dir Direction, height Height) (float64, error) {
	byHeight, ok := penaltyMultipliers[dir]
	if !ok {
		return 0, fmt.Errorf("%w: direction must be left, center or right", ErrInvalidParams)
	}
	multiplier, ok := byHeight[height]
	if !ok {
		return 0, fmt.Errorf("%w: height must be low, mid or high", ErrInvalidParams)
	}
	return multiplier, nil
}

// PlayPenalty draws the keeper's save cell uniformly over the 3x3 grid;
// any kick the keeper does not fully match is a goal.
func PlayPenalty(stakeCents int64, dir Direction, height Height, src Source) (Outcome, error) {
	multiplier, err := PenaltyMultiplier(dir, height)
	if err != nil {
		return Outcome{}, err
	}

	saveDir := penaltyDirections[cellIndex(src.Float64())]
	saveHeight := penaltyHeights[cellIndex(src.Float64())]

	goal := saveDir != dir || saveHeight != height

	detail := map[string]any{
		"save_direction": saveDir,
		"save_height":    saveHeight,
		"goal":           goal,
	}
	if !goal {
		return lost(detail), nil
	}
	return won(stakeCents, multiplier, detail), nil
}

func cellIndex(draw float64) int {
	idx := int(draw * 3)
	if idx > 2 {
		idx = 2
	}
	return idx
}
