package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"vf4-sportsbook-backend/internal/games"
	"vf4-sportsbook-backend/internal/ledger"
	"vf4-sportsbook-backend/internal/metrics"
	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/store"
)

// Notifier pushes settled results to connected clients. Presentation
// pacing belongs to the client; the notifier only ever sees terminal state.
type Notifier interface {
	NotifyWagerSettled(accountID string, wager *models.Wager)
	NotifyMinigameOutcome(accountID string, outcome *models.MinigameOutcome)
}

// WagerEngine runs one wagering transaction end to end: validate funds,
// debit the stake, resolve the outcome, credit the payout, record history.
// The stake is debited before the outcome is known and is non-refundable
// once reserved; only validation failures are free.
type WagerEngine struct {
	ledger  *ledger.Ledger
	store   store.Store
	src     games.Source
	log     *zap.Logger
	metrics *metrics.Metrics

	maxStakeCents int64

	notifier Notifier

	// settleMu serializes settlements so a wager is credited at most once.
	settleMu sync.Mutex
}

func NewWagerEngine(
	l *ledger.Ledger,
	st store.Store,
	src games.Source,
	m *metrics.Metrics,
	log *zap.Logger,
	maxStakeCents int64,
) *WagerEngine {
	return &WagerEngine{
		ledger:        l,
		store:         st,
		src:           src,
		log:           log,
		metrics:       m,
		maxStakeCents: maxStakeCents,
	}
}

func (e *WagerEngine) SetNotifier(n Notifier) {
	e.notifier = n
}

// account resolves the acting account, attaching it from the store when
// the ledger has not seen it yet (process restart with a live token).
func (e *WagerEngine) account(ctx context.Context, accountID string) (models.Account, error) {
	snapshot, err := e.ledger.Get(accountID)
	if err == nil {
		return snapshot, nil
	}

	persisted, serr := e.store.GetAccount(ctx, accountID)
	if serr != nil {
		return models.Account{}, ErrNotAuthenticated
	}
	e.ledger.Attach(persisted)
	return e.ledger.Get(accountID)
}

func (e *WagerEngine) validateStake(stakeCents int64) error {
	if stakeCents <= 0 {
		return fmt.Errorf("%w: stake must be positive", ErrInvalidSelection)
	}
	if stakeCents > e.maxStakeCents {
		return fmt.Errorf("%w: stake above the ceiling of %s", ErrInvalidSelection,
			models.FormatCurrency(e.maxStakeCents))
	}
	return nil
}

// PlaceSportsBet validates and reserves a fixed-odds bet. Odds come with
// the request as quoted by the match feed; the engine only checks shape.
func (e *WagerEngine) PlaceSportsBet(ctx context.Context, accountID string, req *models.SportsBetRequest) (*models.Wager, error) {
	account, err := e.account(ctx, accountID)
	if err != nil {
		e.reject("not_authenticated")
		return nil, err
	}

	betType := models.BetType(req.Type)
	if !betType.Valid() {
		e.reject("invalid_selection")
		return nil, fmt.Errorf("%w: unknown bet type %q", ErrInvalidSelection, req.Type)
	}
	if req.Selection == "" || req.MatchID == "" {
		e.reject("invalid_selection")
		return nil, fmt.Errorf("%w: match and selection are required", ErrInvalidSelection)
	}
	if req.Odds < 1.0 {
		e.reject("invalid_selection")
		return nil, fmt.Errorf("%w: odds %.2f below 1.0", ErrInvalidSelection, req.Odds)
	}
	if err := e.validateStake(req.StakeCents); err != nil {
		e.reject("invalid_selection")
		return nil, err
	}

	// Reserve: the stake leaves the balance before the outcome exists.
	if _, err := e.ledger.Debit(account.ID, req.StakeCents); err != nil {
		if !errors.Is(err, ledger.ErrInsufficientFunds) {
			// Account left the ledger between resolution and debit.
			e.reject("not_authenticated")
			return nil, ErrNotAuthenticated
		}
		e.reject("insufficient_funds")
		return nil, err
	}

	wager := &models.Wager{
		ID:                   models.NewWagerID(),
		AccountID:            account.ID,
		MatchID:              req.MatchID,
		Type:                 betType,
		Selection:            req.Selection,
		Odds:                 req.Odds,
		StakeCents:           req.StakeCents,
		PotentialPayoutCents: models.PayoutCents(req.StakeCents, req.Odds),
		Status:               models.WagerStatusPending,
		PlacedAt:             time.Now(),
	}

	if err := e.store.SaveWager(ctx, wager); err != nil {
		// Persisting failed after the debit: return the stake so the
		// transaction stays all-or-nothing.
		e.ledger.Credit(account.ID, req.StakeCents)
		return nil, fmt.Errorf("failed to record wager: %w", err)
	}

	e.ledger.RecordBetPlaced(account.ID)
	e.persistAccount(ctx, account.ID)

	e.metrics.WagersPlaced.Inc()
	e.metrics.StakedCents.Add(float64(req.StakeCents))

	e.log.Info("wager placed",
		zap.String("wager_id", wager.ID),
		zap.String("account_id", account.ID),
		zap.String("match_id", wager.MatchID),
		zap.String("type", string(wager.Type)),
		zap.Int64("stake_cents", wager.StakeCents),
		zap.Float64("odds", wager.Odds),
	)

	return wager, nil
}

// SettleBet moves a pending wager to its terminal state. It is idempotent:
// a second call with the same id reports ErrAlreadySettled and credits
// nothing.
func (e *WagerEngine) SettleBet(ctx context.Context, wagerID string, won bool) (*models.Wager, error) {
	e.settleMu.Lock()
	defer e.settleMu.Unlock()

	wager, err := e.store.GetWager(ctx, wagerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if wager.Status != models.WagerStatusPending {
		return nil, ErrAlreadySettled
	}

	if _, err := e.account(ctx, wager.AccountID); err != nil {
		return nil, err
	}

	if won {
		wager.Status = models.WagerStatusWon
	} else {
		wager.Status = models.WagerStatusLost
	}
	wager.SettledAt = time.Now()

	if err := e.store.SaveWager(ctx, wager); err != nil {
		return nil, fmt.Errorf("failed to settle wager: %w", err)
	}

	if won {
		e.ledger.Credit(wager.AccountID, wager.PotentialPayoutCents)
		e.ledger.RecordWin(wager.AccountID)
		e.metrics.PaidOutCents.Add(float64(wager.PotentialPayoutCents))
	}
	e.persistAccount(ctx, wager.AccountID)
	e.metrics.WagersSettled.WithLabelValues(string(wager.Status)).Inc()

	e.log.Info("wager settled",
		zap.String("wager_id", wager.ID),
		zap.String("account_id", wager.AccountID),
		zap.String("status", string(wager.Status)),
		zap.Int64("payout_cents", paidCents(wager)),
	)

	if e.notifier != nil {
		e.notifier.NotifyWagerSettled(wager.AccountID, wager)
	}

	return wager, nil
}

// PlayMinigame resolves an instant game synchronously: there is no pending
// state, the round is terminal when this returns.
func (e *WagerEngine) PlayMinigame(ctx context.Context, accountID string, req *models.MinigameRequest) (*models.MinigameOutcome, error) {
	account, err := e.account(ctx, accountID)
	if err != nil {
		e.reject("not_authenticated")
		return nil, err
	}

	kind := models.GameKind(req.Game)
	if !kind.Valid() {
		e.reject("invalid_selection")
		return nil, fmt.Errorf("%w: unknown game %q", ErrInvalidSelection, req.Game)
	}
	if err := e.validateStake(req.StakeCents); err != nil {
		e.reject("invalid_selection")
		return nil, err
	}
	// Parameters are checked before the debit so a malformed round never
	// touches the balance.
	if err := validateParams(kind, &req.Params); err != nil {
		e.reject("invalid_selection")
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, err)
	}

	if _, err := e.ledger.Debit(account.ID, req.StakeCents); err != nil {
		if !errors.Is(err, ledger.ErrInsufficientFunds) {
			e.reject("not_authenticated")
			return nil, ErrNotAuthenticated
		}
		e.reject("insufficient_funds")
		return nil, err
	}
	e.ledger.RecordBetPlaced(account.ID)

	resolved, err := resolve(kind, req.StakeCents, &req.Params, e.src)
	if err != nil {
		// Unreachable after validateParams; guard the debit anyway.
		e.ledger.Credit(account.ID, req.StakeCents)
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, err)
	}

	outcome := &models.MinigameOutcome{
		ID:          models.NewOutcomeID(),
		AccountID:   account.ID,
		Game:        kind,
		StakeCents:  req.StakeCents,
		Multiplier:  resolved.Multiplier,
		Result:      models.GameResultLose,
		PayoutCents: resolved.PayoutCents,
		Detail:      resolved.Detail,
		CreatedAt:   time.Now(),
	}
	if resolved.Win {
		outcome.Result = models.GameResultWin
		e.ledger.Credit(account.ID, resolved.PayoutCents)
		e.ledger.RecordWin(account.ID)
		e.metrics.PaidOutCents.Add(float64(resolved.PayoutCents))
	}

	if err := e.store.AppendOutcome(ctx, outcome); err != nil {
		e.log.Warn("failed to record minigame outcome", zap.Error(err))
	}
	e.persistAccount(ctx, account.ID)

	e.metrics.MinigameRounds.WithLabelValues(string(kind), string(outcome.Result)).Inc()
	e.metrics.StakedCents.Add(float64(req.StakeCents))

	e.log.Info("minigame resolved",
		zap.String("outcome_id", outcome.ID),
		zap.String("account_id", account.ID),
		zap.String("game", string(kind)),
		zap.String("result", string(outcome.Result)),
		zap.Int64("stake_cents", outcome.StakeCents),
		zap.Int64("payout_cents", outcome.PayoutCents),
	)

	if e.notifier != nil {
		e.notifier.NotifyMinigameOutcome(account.ID, outcome)
	}

	return outcome, nil
}

func (e *WagerEngine) Wagers(ctx context.Context, accountID string, limit int64) ([]*models.Wager, error) {
	return e.store.ListWagers(ctx, accountID, limit)
}

func (e *WagerEngine) History(ctx context.Context, accountID string, limit int64) ([]*models.MinigameOutcome, error) {
	return e.store.ListOutcomes(ctx, accountID, limit)
}

func (e *WagerEngine) Balance(ctx context.Context, accountID string) (models.BalanceSnapshot, error) {
	account, err := e.account(ctx, accountID)
	if err != nil {
		return models.BalanceSnapshot{}, err
	}
	return models.BalanceSnapshot{
		BalanceCents: account.BalanceCents,
		TotalBets:    account.TotalBets,
		TotalWins:    account.TotalWins,
	}, nil
}

func validateParams(kind models.GameKind, params *models.MinigameParams) error {
	switch kind {
	case models.GameKindCoinflip:
		side := games.CoinSide(params.Side)
		if side != games.CoinHeads && side != games.CoinTails {
			return fmt.Errorf("side must be heads or tails")
		}
	case models.GameKindCrash:
		if params.Cashout < games.MinMultiplier || params.Cashout > games.MaxCrashCashout {
			return fmt.Errorf("cashout must be in [%.2f, %.2f]", games.MinMultiplier, games.MaxCrashCashout)
		}
	case models.GameKindDice:
		if _, err := games.DiceMultiplier(params.Target, params.Prediction); err != nil {
			return err
		}
	case models.GameKindPenalty:
		if _, err := games.PenaltyMultiplier(games.Direction(params.Direction), games.Height(params.Height)); err != nil {
			return err
		}
	}
	return nil
}

func resolve(kind models.GameKind, stakeCents int64, params *models.MinigameParams, src games.Source) (games.Outcome, error) {
	switch kind {
	case models.GameKindCoinflip:
		return games.PlayCoinflip(stakeCents, games.CoinSide(params.Side), src)
	case models.GameKindCrash:
		return games.PlayCrash(stakeCents, params.Cashout, src)
	case models.GameKindDice:
		return games.PlayDice(stakeCents, params.Target, params.Prediction, src)
	case models.GameKindPenalty:
		return games.PlayPenalty(stakeCents, games.Direction(params.Direction), games.Height(params.Height), src)
	}
	return games.Outcome{}, fmt.Errorf("unknown game %q", kind)
}

func (e *WagerEngine) persistAccount(ctx context.Context, accountID string) {
	snapshot, err := e.ledger.Get(accountID)
	if err != nil {
		return
	}
	if err := e.store.SaveAccount(ctx, &snapshot); err != nil {
		e.log.Warn("failed to persist account", zap.String("account_id", accountID), zap.Error(err))
	}
}

func (e *WagerEngine) reject(reason string) {
	e.metrics.WagersRejected.WithLabelValues(reason).Inc()
}

func paidCents(wager *models.Wager) int64 {
	if wager.Status == models.WagerStatusWon {
		return wager.PotentialPayoutCents
	}
	return 0
}
