package models

import "time"

type Account struct {
	ID       string `json:"id" redis:"id"`
	Username string `json:"username" redis:"username"`
	Email    string `json:"email" redis:"email"`

	// BalanceCents is the spendable balance in currency minor units. It is
	// mutated only through the ledger's debit/credit operations.
	BalanceCents int64 `json:"balance_cents" redis:"balance_cents"`

	TotalBets int64 `json:"total_bets" redis:"total_bets"`
	TotalWins int64 `json:"total_wins" redis:"total_wins"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
}

type Session struct {
	AccountID    string    `json:"account_id" redis:"account_id"`
	SessionID    string    `json:"session_id" redis:"session_id"`
	Username     string    `json:"username" redis:"username"`
	CreatedAt    time.Time `json:"created_at" redis:"created_at"`
	LastAccessed time.Time `json:"last_accessed" redis:"last_accessed"`
}

type BalanceSnapshot struct {
	BalanceCents int64 `json:"balance_cents"`
	TotalBets    int64 `json:"total_bets"`
	TotalWins    int64 `json:"total_wins"`
}
