package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vf4-sportsbook-backend/internal/models"
)

const (
	keyAccount         = "account:%s"
	keyAccountUsername = "account:username:%s"
	keyWager           = "wager:%s"
	keyAccountWagers   = "account:%s:wagers"
	keyAccountOutcomes = "account:%s:outcomes"
	keySession         = "session:%s:%s"
	keyRateLimit       = "ratelimit:%s"

	ttlAccount = 0 // accounts never expire
	ttlWager   = 30 * 24 * time.Hour
)

// RedisStore keeps accounts, wagers and history as JSON blobs, the wager
// index as a sorted set and the minigame history as a trimmed list.
type RedisStore struct {
	client     *redis.Client
	historyCap int64
}

func NewRedisStore(addr, password string, db, historyCap int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}

	return &RedisStore{client: client, historyCap: int64(historyCap)}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Allow counts a hit against a fixed window keyed by caller and action.
// The counter expires with the window, so the first hit opens it.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf(keyRateLimit, key)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if count == 1 {
		s.client.Expire(ctx, redisKey, window)
	}

	return count <= int64(limit), nil
}

func (s *RedisStore) SaveAccount(ctx context.Context, account *models.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	key := fmt.Sprintf(keyAccount, account.ID)
	if err := s.client.Set(ctx, key, data, ttlAccount).Err(); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	usernameKey := fmt.Sprintf(keyAccountUsername, account.Username)
	return s.client.Set(ctx, usernameKey, account.ID, ttlAccount).Err()
}

func (s *RedisStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(keyAccount, id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

func (s *RedisStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	id, err := s.client.Get(ctx, fmt.Sprintf(keyAccountUsername, username)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve username: %w", err)
	}
	return s.GetAccount(ctx, id)
}

func (s *RedisStore) SaveWager(ctx context.Context, wager *models.Wager) error {
	data, err := json.Marshal(wager)
	if err != nil {
		return fmt.Errorf("failed to marshal wager: %w", err)
	}

	key := fmt.Sprintf(keyWager, wager.ID)
	if err := s.client.Set(ctx, key, data, ttlWager).Err(); err != nil {
		return fmt.Errorf("failed to save wager: %w", err)
	}

	indexKey := fmt.Sprintf(keyAccountWagers, wager.AccountID)
	if err := s.client.ZAdd(ctx, indexKey, redis.Z{
		Score:  float64(wager.PlacedAt.Unix()),
		Member: wager.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index wager: %w", err)
	}
	s.client.Expire(ctx, indexKey, ttlWager)

	return nil
}

func (s *RedisStore) GetWager(ctx context.Context, id string) (*models.Wager, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf(keyWager, id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager: %w", err)
	}

	var wager models.Wager
	if err := json.Unmarshal([]byte(data), &wager); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wager: %w", err)
	}
	return &wager, nil
}

func (s *RedisStore) ListWagers(ctx context.Context, accountID string, limit int64) ([]*models.Wager, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	indexKey := fmt.Sprintf(keyAccountWagers, accountID)
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}

	wagers := make([]*models.Wager, 0, len(ids))
	for _, id := range ids {
		wager, err := s.GetWager(ctx, id)
		if err != nil {
			continue
		}
		wagers = append(wagers, wager)
	}
	return wagers, nil
}

func (s *RedisStore) AppendOutcome(ctx context.Context, outcome *models.MinigameOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	key := fmt.Sprintf(keyAccountOutcomes, outcome.AccountID)
	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to append outcome: %w", err)
	}
	// Keep only the most recent entries.
	return s.client.LTrim(ctx, key, 0, s.historyCap-1).Err()
}

func (s *RedisStore) ListOutcomes(ctx context.Context, accountID string, limit int64) ([]*models.MinigameOutcome, error) {
	if limit <= 0 || limit > s.historyCap {
		limit = s.historyCap
	}

	key := fmt.Sprintf(keyAccountOutcomes, accountID)
	entries, err := s.client.LRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}

	outcomes := make([]*models.MinigameOutcome, 0, len(entries))
	for _, entry := range entries {
		var outcome models.MinigameOutcome
		if err := json.Unmarshal([]byte(entry), &outcome); err != nil {
			continue
		}
		outcomes = append(outcomes, &outcome)
	}
	return outcomes, nil
}

func (s *RedisStore) SaveSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	key := fmt.Sprintf(keySession, session.AccountID, session.SessionID)
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *RedisStore) GetSession(ctx context.Context, accountID, sessionID string) (*models.Session, error) {
	key := fmt.Sprintf(keySession, accountID, sessionID)
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, accountID, sessionID string) error {
	key := fmt.Sprintf(keySession, accountID, sessionID)
	return s.client.Del(ctx, key).Err()
}
