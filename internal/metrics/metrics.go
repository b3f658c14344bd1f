package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the wagering counters exposed on /metrics.
type Metrics struct {
	WagersPlaced   prometheus.Counter
	WagersRejected *prometheus.CounterVec
	WagersSettled  *prometheus.CounterVec
	MinigameRounds *prometheus.CounterVec
	StakedCents    prometheus.Counter
	PaidOutCents   prometheus.Counter
}

func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers the counters against an explicit registerer, so tests
// can use an isolated registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		WagersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "sportsbook_wagers_placed_total",
			Help: "Sports wagers accepted into the pending state.",
		}),
		WagersRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsbook_wagers_rejected_total",
			Help: "Wager placements rejected during validation.",
		}, []string{"reason"}),
		WagersSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsbook_wagers_settled_total",
			Help: "Sports wagers settled to a terminal state.",
		}, []string{"result"}),
		MinigameRounds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sportsbook_minigame_rounds_total",
			Help: "Minigame rounds resolved, by game and result.",
		}, []string{"game", "result"}),
		StakedCents: factory.NewCounter(prometheus.CounterOpts{
			Name: "sportsbook_staked_cents_total",
			Help: "Total stake debited, in cents.",
		}),
		PaidOutCents: factory.NewCounter(prometheus.CounterOpts{
			Name: "sportsbook_paid_out_cents_total",
			Help: "Total payouts credited, in cents.",
		}),
	}
}

type HealthFunc func(ctx context.Context) error

// StartServer runs a lightweight HTTP server for /metrics and /healthz on
// its own port, detached from the public API.
func StartServer(port string, healthFn HealthFunc) *http.Server {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()

		if healthFn != nil {
			if err := healthFn(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(fmt.Sprintf("unhealthy: %v", err)))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		_ = srv.ListenAndServe()
	}()

	return srv
}
