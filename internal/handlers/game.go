package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vf4-sportsbook-backend/internal/games"
	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/services"
)

type GameHandler struct {
	engine *services.WagerEngine
	src    *games.HashSource
}

func NewGameHandler(engine *services.WagerEngine, src *games.HashSource) *GameHandler {
	return &GameHandler{engine: engine, src: src}
}

// Play resolves one instant-game round; the response carries the terminal
// outcome, there is nothing to poll afterwards.
func (h *GameHandler) Play(c *gin.Context) {
	var req models.MinigameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	outcome, err := h.engine.PlayMinigame(c.Request.Context(), accountID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	snapshot, err := h.engine.Balance(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"outcome": outcomeJSON(outcome),
		"balance": gin.H{
			"balance_cents": snapshot.BalanceCents,
			"balance":       models.FormatCurrency(snapshot.BalanceCents),
		},
	})
}

func (h *GameHandler) GetHistory(c *gin.Context) {
	limit := queryLimit(c, 50)

	outcomes, err := h.engine.History(c.Request.Context(), accountID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]gin.H, 0, len(outcomes))
	for _, outcome := range outcomes {
		response = append(response, outcomeJSON(outcome))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rounds":  response,
		"count":   len(response),
	})
}

// GetFairness publishes the commitment a player needs to verify draws once
// the server seed rotates out.
func (h *GameHandler) GetFairness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": models.VerificationData{
			ClientSeed:   h.src.ClientSeed(),
			ServerHash:   h.src.ServerHash(),
			CurrentNonce: h.src.Nonce(),
		},
	})
}

// VerifyDraw recomputes a past draw from a revealed server seed.
func (h *GameHandler) VerifyDraw(c *gin.Context) {
	var req struct {
		ServerSeed string `json:"server_seed" binding:"required"`
		ClientSeed string `json:"client_seed" binding:"required"`
		Nonce      uint64 `json:"nonce"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	draw := games.DrawAt(req.ServerSeed, req.ClientSeed, req.Nonce)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"verification": gin.H{
			"draw":        draw,
			"crash_point": games.CrashPoint(1 - draw),
			"dice_roll":   draw * 100,
			"client_seed": req.ClientSeed,
			"nonce":       req.Nonce,
		},
	})
}

func outcomeJSON(outcome *models.MinigameOutcome) gin.H {
	return gin.H{
		"id":           outcome.ID,
		"game":         outcome.Game,
		"stake_cents":  outcome.StakeCents,
		"multiplier":   outcome.Multiplier,
		"result":       outcome.Result,
		"payout_cents": outcome.PayoutCents,
		"detail":       outcome.Detail,
		"created_at":   outcome.CreatedAt,
	}
}
