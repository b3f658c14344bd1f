package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vf4-sportsbook-backend/internal/ledger"
	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/store"
)

// SessionService binds at most one account as active per token. It is a
// demo identity layer, not a security boundary: any username/email pair
// logs in, new accounts are seeded with a starting bonus balance.
type SessionService struct {
	ledger *ledger.Ledger
	store  store.Store
	jwt    *JWTService
	log    *zap.Logger

	startingBalanceCents int64
	sessionTTL           time.Duration
}

func NewSessionService(
	l *ledger.Ledger,
	st store.Store,
	jwt *JWTService,
	log *zap.Logger,
	startingBalanceCents int64,
	sessionTTL time.Duration,
) *SessionService {
	return &SessionService{
		ledger:               l,
		store:                st,
		jwt:                  jwt,
		log:                  log,
		startingBalanceCents: startingBalanceCents,
		sessionTTL:           sessionTTL,
	}
}

// Login reattaches an existing account by username or creates a new one,
// and issues a token bound to a fresh session.
func (s *SessionService) Login(ctx context.Context, username, email string) (*models.Account, string, error) {
	account, err := s.store.GetAccountByUsername(ctx, username)
	switch {
	case err == nil:
		s.ledger.Attach(account)
	case errors.Is(err, store.ErrNotFound):
		account = s.ledger.Open(username, email, s.startingBalanceCents)
		if err := s.store.SaveAccount(ctx, account); err != nil {
			return nil, "", fmt.Errorf("failed to persist account: %w", err)
		}
		s.log.Info("account created",
			zap.String("account_id", account.ID),
			zap.String("username", username),
			zap.Int64("starting_balance_cents", s.startingBalanceCents),
		)
	default:
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}

	session := &models.Session{
		AccountID:    account.ID,
		SessionID:    uuid.New().String(),
		Username:     account.Username,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
	if err := s.store.SaveSession(ctx, session, s.sessionTTL); err != nil {
		return nil, "", fmt.Errorf("failed to persist session: %w", err)
	}

	token, err := s.jwt.GenerateToken(account.ID, session.SessionID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	snapshot, err := s.ledger.Get(account.ID)
	if err != nil {
		return nil, "", err
	}
	return &snapshot, token, nil
}

// Logout clears the session binding only; the account and its history
// survive for the next login.
func (s *SessionService) Logout(ctx context.Context, accountID, sessionID string) error {
	return s.store.DeleteSession(ctx, accountID, sessionID)
}

// CurrentAccount returns the active account for a validated token.
func (s *SessionService) CurrentAccount(ctx context.Context, accountID string) (models.Account, error) {
	snapshot, err := s.ledger.Get(accountID)
	if err == nil {
		return snapshot, nil
	}

	persisted, serr := s.store.GetAccount(ctx, accountID)
	if serr != nil {
		return models.Account{}, ErrNotAuthenticated
	}
	s.ledger.Attach(persisted)
	return s.ledger.Get(accountID)
}
