// Package store persists accounts, wagers, minigame history and sessions.
// The wager engine only sees the Store interface; the Redis implementation
// mirrors how the service runs, the memory implementation backs tests and
// redis-less development.
package store

import (
	"context"
	"errors"
	"time"

	"vf4-sportsbook-backend/internal/models"
)

var ErrNotFound = errors.New("not found")

// DefaultHistoryCap bounds the minigame history kept per account,
// most-recent-first; older entries are evicted.
const DefaultHistoryCap = 50

type Store interface {
	SaveAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)

	SaveWager(ctx context.Context, wager *models.Wager) error
	GetWager(ctx context.Context, id string) (*models.Wager, error)
	ListWagers(ctx context.Context, accountID string, limit int64) ([]*models.Wager, error)

	AppendOutcome(ctx context.Context, outcome *models.MinigameOutcome) error
	ListOutcomes(ctx context.Context, accountID string, limit int64) ([]*models.MinigameOutcome, error)

	SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, accountID, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, accountID, sessionID string) error
}
