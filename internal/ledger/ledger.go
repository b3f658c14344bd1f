// Package ledger owns account balances and counters. Every operation is a
// single indivisible transition under the ledger lock, so a debit can never
// interleave with another balance read-then-write on the same account.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"vf4-sportsbook-backend/internal/models"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("account not found")
	ErrInvalidAmount     = errors.New("invalid amount")
)

type Ledger struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
}

func New() *Ledger {
	return &Ledger{accounts: make(map[string]*models.Account)}
}

// Open registers a new account seeded with the starting balance.
func (l *Ledger) Open(username, email string, startingBalanceCents int64) *models.Account {
	account := &models.Account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		BalanceCents: startingBalanceCents,
		CreatedAt:    time.Now(),
	}

	l.mu.Lock()
	l.accounts[account.ID] = account
	snapshot := *account
	l.mu.Unlock()

	return &snapshot
}

// Attach loads a persisted account into the ledger. An account already
// attached keeps its live state.
func (l *Ledger) Attach(account *models.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.accounts[account.ID]; ok {
		return
	}
	copied := *account
	l.accounts[account.ID] = &copied
}

// Get returns a snapshot of the account.
func (l *Ledger) Get(id string) (models.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[id]
	if !ok {
		return models.Account{}, ErrNotFound
	}
	return *account, nil
}

func (l *Ledger) Balance(id string) (int64, error) {
	account, err := l.Get(id)
	if err != nil {
		return 0, err
	}
	return account.BalanceCents, nil
}

// Debit decrements the balance iff the full amount is covered. The check
// and the decrement happen under one lock acquisition.
func (l *Ledger) Debit(id string, amountCents int64) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}
	if amountCents > account.BalanceCents {
		return account.BalanceCents, ErrInsufficientFunds
	}

	account.BalanceCents -= amountCents
	return account.BalanceCents, nil
}

// Credit adds to the balance. The floor clamp can only matter on malformed
// state and keeps the non-negative invariant observable everywhere.
func (l *Ledger) Credit(id string, amountCents int64) (int64, error) {
	if amountCents < 0 {
		return 0, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[id]
	if !ok {
		return 0, ErrNotFound
	}

	account.BalanceCents += amountCents
	if account.BalanceCents < 0 {
		account.BalanceCents = 0
	}
	return account.BalanceCents, nil
}

func (l *Ledger) RecordBetPlaced(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.TotalBets++
	return nil
}

// RecordWin is the single increment site for the win counter; both sports
// settlement and minigame wins go through here.
func (l *Ledger) RecordWin(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	account, ok := l.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.TotalWins++
	return nil
}
