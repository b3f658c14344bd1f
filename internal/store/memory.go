package store

import (
	"context"
	"sync"
	"time"

	"vf4-sportsbook-backend/internal/models"
)

// MemoryStore is a map-backed Store for tests and redis-less runs.
type MemoryStore struct {
	mu         sync.RWMutex
	historyCap int

	accounts   map[string]models.Account
	byUsername map[string]string
	wagers     map[string]models.Wager
	byAccount  map[string][]string // wager ids, most recent first
	outcomes   map[string][]models.MinigameOutcome
	sessions   map[string]sessionEntry
}

type sessionEntry struct {
	session   models.Session
	expiresAt time.Time
}

func NewMemoryStore(historyCap int) *MemoryStore {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &MemoryStore{
		historyCap: historyCap,
		accounts:   make(map[string]models.Account),
		byUsername: make(map[string]string),
		wagers:     make(map[string]models.Wager),
		byAccount:  make(map[string][]string),
		outcomes:   make(map[string][]models.MinigameOutcome),
		sessions:   make(map[string]sessionEntry),
	}
}

func (s *MemoryStore) SaveAccount(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	s.byUsername[account.Username] = account.ID
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, id string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (s *MemoryStore) GetAccountByUsername(_ context.Context, username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	account := s.accounts[id]
	return &account, nil
}

func (s *MemoryStore) SaveWager(_ context.Context, wager *models.Wager) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, known := s.wagers[wager.ID]
	s.wagers[wager.ID] = *wager
	if !known {
		s.byAccount[wager.AccountID] = append([]string{wager.ID}, s.byAccount[wager.AccountID]...)
	}
	return nil
}

func (s *MemoryStore) GetWager(_ context.Context, id string) (*models.Wager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wager, ok := s.wagers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &wager, nil
}

func (s *MemoryStore) ListWagers(_ context.Context, accountID string, limit int64) ([]*models.Wager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byAccount[accountID]
	if limit > 0 && int64(len(ids)) > limit {
		ids = ids[:limit]
	}

	wagers := make([]*models.Wager, 0, len(ids))
	for _, id := range ids {
		wager := s.wagers[id]
		wagers = append(wagers, &wager)
	}
	return wagers, nil
}

func (s *MemoryStore) AppendOutcome(_ context.Context, outcome *models.MinigameOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append([]models.MinigameOutcome{*outcome}, s.outcomes[outcome.AccountID]...)
	if len(history) > s.historyCap {
		history = history[:s.historyCap]
	}
	s.outcomes[outcome.AccountID] = history
	return nil
}

func (s *MemoryStore) ListOutcomes(_ context.Context, accountID string, limit int64) ([]*models.MinigameOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.outcomes[accountID]
	if limit > 0 && int64(len(history)) > limit {
		history = history[:limit]
	}

	outcomes := make([]*models.MinigameOutcome, 0, len(history))
	for i := range history {
		outcome := history[i]
		outcomes = append(outcomes, &outcome)
	}
	return outcomes, nil
}

func (s *MemoryStore) SaveSession(_ context.Context, session *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.AccountID+":"+session.SessionID] = sessionEntry{
		session:   *session,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, accountID, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[accountID+":"+sessionID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	session := entry.session
	return &session, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, accountID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, accountID+":"+sessionID)
	return nil
}
