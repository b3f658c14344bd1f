package handlers_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"vf4-sportsbook-backend/internal/games"
	"vf4-sportsbook-backend/internal/handlers"
	"vf4-sportsbook-backend/internal/ledger"
	"vf4-sportsbook-backend/internal/metrics"
	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/services"
	"vf4-sportsbook-backend/internal/store"
)

type wsTestMessage struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func newWebSocketServer(t *testing.T) (*httptest.Server, *handlers.WebSocketHandler, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	l := ledger.New()
	account := l.Open("maria", "maria@example.com", 100000)
	st := store.NewMemoryStore(0)
	if err := st.SaveAccount(context.Background(), account); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}

	engine := services.NewWagerEngine(
		l,
		st,
		games.NewHashSource("server-seed", "client-seed"),
		metrics.NewWith(prometheus.NewRegistry()),
		zap.NewNop(),
		1000000,
	)

	wsHandler := handlers.NewWebSocketHandler(engine, zap.NewNop())

	router := gin.New()
	router.GET("/ws",
		func(c *gin.Context) { c.Set("account_id", account.ID) },
		wsHandler.HandleWebSocket,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, wsHandler, account.ID
}

func dialWebSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	return conn
}

func TestWebSocketSendsBalanceOnConnect(t *testing.T) {
	srv, _, _ := newWebSocketServer(t)
	conn := dialWebSocket(t, srv)

	var msg wsTestMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "BALANCE_UPDATE" {
		t.Fatalf("first message = %s, want BALANCE_UPDATE", msg.Type)
	}
	if got := msg.Data["balance_cents"].(float64); got != 100000 {
		t.Errorf("balance_cents = %v, want 100000", got)
	}
}

// The PONG reply and the hub push write on the same connection from
// different goroutines; interleaving them must not corrupt frames.
func TestWebSocketConcurrentPushAndPong(t *testing.T) {
	srv, wsHandler, accountID := newWebSocketServer(t)
	conn := dialWebSocket(t, srv)

	var msg wsTestMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "BALANCE_UPDATE" {
		t.Fatalf("first message = %s, want BALANCE_UPDATE", msg.Type)
	}

	const rounds = 20
	go func() {
		for i := 0; i < rounds; i++ {
			conn.WriteJSON(wsTestMessage{Type: "PING"})
		}
	}()
	for i := 0; i < rounds; i++ {
		wsHandler.NotifyMinigameOutcome(accountID, &models.MinigameOutcome{
			ID:     models.NewOutcomeID(),
			Game:   models.GameKindCoinflip,
			Result: models.GameResultWin,
		})
	}

	pongs, results := 0, 0
	for i := 0; i < 2*rounds; i++ {
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON after %d messages: %v", i, err)
		}
		switch msg.Type {
		case "PONG":
			pongs++
		case "GAME_RESULT":
			results++
		default:
			t.Fatalf("unexpected message type %s", msg.Type)
		}
	}

	if pongs != rounds || results != rounds {
		t.Errorf("got %d pongs and %d results, want %d each", pongs, results, rounds)
	}
}

func TestWebSocketSettlementPush(t *testing.T) {
	srv, wsHandler, accountID := newWebSocketServer(t)
	conn := dialWebSocket(t, srv)

	var msg wsTestMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	wsHandler.NotifyWagerSettled(accountID, &models.Wager{
		ID:                   models.NewWagerID(),
		AccountID:            accountID,
		MatchID:              "match-1",
		Type:                 models.BetTypeMatchResult,
		Status:               models.WagerStatusWon,
		PotentialPayoutCents: 25000,
	})

	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "WAGER_SETTLED" {
		t.Fatalf("message = %s, want WAGER_SETTLED", msg.Type)
	}
	if got := msg.Data["status"].(string); got != "won" {
		t.Errorf("status = %v, want won", got)
	}
}
