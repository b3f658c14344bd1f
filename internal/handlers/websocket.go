package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler pushes settled wagers and resolved rounds to the owning
// account's connection. It implements services.Notifier.
type WebSocketHandler struct {
	engine *services.WagerEngine
	log    *zap.Logger
	hub    *webSocketHub
}

type webSocketHub struct {
	clients    map[string]*wsClient
	register   chan *wsClient
	unregister chan *wsClient
	push       chan *wsMessage
}

type wsClient struct {
	accountID string
	conn      *websocket.Conn

	// writeMu serializes writes; the conn allows one concurrent writer and
	// both the hub and the read loop send on it.
	writeMu sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

type wsMessage struct {
	Type      string `json:"type"`
	AccountID string `json:"-"`
	Data      any    `json:"data"`
}

func NewWebSocketHandler(engine *services.WagerEngine, log *zap.Logger) *WebSocketHandler {
	hub := &webSocketHub{
		clients:    make(map[string]*wsClient),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		push:       make(chan *wsMessage, 100),
	}

	go hub.run()

	return &WebSocketHandler{engine: engine, log: log, hub: hub}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	account := accountID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{accountID: account, conn: conn}
	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	h.sendBalance(c, client)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		if msg.Type == "PING" {
			client.writeJSON(wsMessage{
				Type: "PONG",
				Data: gin.H{"timestamp": time.Now().Unix()},
			})
		}
	}
}

func (h *WebSocketHandler) sendBalance(c *gin.Context, client *wsClient) {
	snapshot, err := h.engine.Balance(c.Request.Context(), client.accountID)
	if err != nil {
		h.log.Warn("failed to load balance for websocket",
			zap.String("account_id", client.accountID), zap.Error(err))
		return
	}

	client.writeJSON(wsMessage{
		Type: "BALANCE_UPDATE",
		Data: gin.H{
			"balance_cents": snapshot.BalanceCents,
			"total_bets":    snapshot.TotalBets,
			"total_wins":    snapshot.TotalWins,
		},
	})
}

// NotifyWagerSettled pushes a terminal sports wager to its owner.
func (h *WebSocketHandler) NotifyWagerSettled(accountID string, wager *models.Wager) {
	h.hub.push <- &wsMessage{
		Type:      "WAGER_SETTLED",
		AccountID: accountID,
		Data:      wagerJSON(wager),
	}
}

// NotifyMinigameOutcome pushes a resolved instant-game round to its owner.
func (h *WebSocketHandler) NotifyMinigameOutcome(accountID string, outcome *models.MinigameOutcome) {
	h.hub.push <- &wsMessage{
		Type:      "GAME_RESULT",
		AccountID: accountID,
		Data:      outcomeJSON(outcome),
	}
}

func (hub *webSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client.accountID] = client

		case client := <-hub.unregister:
			if current, ok := hub.clients[client.accountID]; ok && current == client {
				delete(hub.clients, client.accountID)
			}

		case message := <-hub.push:
			if message.AccountID != "" {
				if client, ok := hub.clients[message.AccountID]; ok {
					client.writeJSON(message)
				}
				continue
			}
			for _, client := range hub.clients {
				client.writeJSON(message)
			}
		}
	}
}
