package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MatchResultEvent is the external settlement trigger: the match-result
// feed decides the outcome, the engine only applies it.
type MatchResultEvent struct {
	WagerID string `json:"wager_id"`
	Won     bool   `json:"won"`
}

// SettlementConsumer feeds match results from Kafka into the wager engine.
// Consumption is idempotent end to end: replayed events hit the engine's
// AlreadySettled guard and are skipped.
type SettlementConsumer struct {
	reader *kafkago.Reader
	engine *WagerEngine
	log    *zap.Logger
}

func NewSettlementConsumer(brokers, topic, groupID string, engine *WagerEngine, log *zap.Logger) *SettlementConsumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  strings.Split(brokers, ","),
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &SettlementConsumer{reader: reader, engine: engine, log: log}
}

// Run consumes until the context is cancelled.
func (c *SettlementConsumer) Run(ctx context.Context) {
	c.log.Info("settlement consumer started", zap.String("topic", c.reader.Config().Topic))

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var event MatchResultEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.Error("unmarshal match result", zap.Error(err))
			continue
		}

		_, err = c.engine.SettleBet(ctx, event.WagerID, event.Won)
		switch {
		case err == nil:
		case errors.Is(err, ErrAlreadySettled), errors.Is(err, ErrNotFound):
			c.log.Warn("settlement skipped",
				zap.String("wager_id", event.WagerID),
				zap.String("reason", err.Error()),
			)
		default:
			c.log.Error("settlement failed",
				zap.String("wager_id", event.WagerID),
				zap.Error(err),
			)
		}
	}
}

func (c *SettlementConsumer) Close() error {
	return c.reader.Close()
}
