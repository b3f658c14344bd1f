package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config centralizes environment variables and runtime parameters.
type Config struct {
	Env         string // "local", "production"
	Port        string
	MetricsPort string

	RedisAddr     string // empty disables Redis, state stays in memory
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	SessionTTL time.Duration

	// Kafka settlement feed; empty brokers disable the consumer.
	KafkaBrokers  string
	ResultsTopic  string
	ConsumerGroup string

	StartingBalanceCents int64
	MaxStakeCents        int64
	HistoryCap           int
}

func Load() (*Config, error) {
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	startingBalance, err := intEnv("STARTING_BALANCE_CENTS", 100000)
	if err != nil {
		return nil, err
	}
	maxStake, err := intEnv("MAX_STAKE_CENTS", 1000000)
	if err != nil {
		return nil, err
	}
	historyCap, err := intEnv("MINIGAME_HISTORY_CAP", 50)
	if err != nil {
		return nil, err
	}
	sessionTTLHours, err := intEnv("SESSION_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:         getEnv("ENV", "local"),
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9095"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-do-not-use-in-prod"),
		SessionTTL: time.Duration(sessionTTLHours) * time.Hour,

		KafkaBrokers:  getEnv("KAFKA_BROKERS", ""),
		ResultsTopic:  getEnv("KAFKA_TOPIC_MATCH_RESULTS", "match_results"),
		ConsumerGroup: getEnv("KAFKA_GROUP_SETTLEMENT", "sportsbook-settlement"),

		StartingBalanceCents: int64(startingBalance),
		MaxStakeCents:        int64(maxStake),
		HistoryCap:           historyCap,
	}, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
