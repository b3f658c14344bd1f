package models

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

func NewWagerID() string {
	return uuid.New().String()
}

func NewOutcomeID() string {
	return uuid.New().String()
}

// PayoutCents converts a stake and quoted multiplier into a payout in
// minor units, rounded to the nearest cent.
func PayoutCents(stakeCents int64, multiplier float64) int64 {
	return int64(math.Round(float64(stakeCents) * multiplier))
}

func FormatCurrency(cents int64) string {
	return fmt.Sprintf("R$ %.2f", float64(cents)/100)
}
