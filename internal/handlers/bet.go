package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/services"
)

type BetHandler struct {
	engine *services.WagerEngine
}

func NewBetHandler(engine *services.WagerEngine) *BetHandler {
	return &BetHandler{engine: engine}
}

func (h *BetHandler) PlaceBet(c *gin.Context) {
	var req models.SportsBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	wager, err := h.engine.PlaceSportsBet(c.Request.Context(), accountID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wager":   wagerJSON(wager),
	})
}

func (h *BetHandler) ListBets(c *gin.Context) {
	limit := queryLimit(c, 50)

	wagers, err := h.engine.Wagers(c.Request.Context(), accountID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]gin.H, 0, len(wagers))
	for _, wager := range wagers {
		response = append(response, wagerJSON(wager))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wagers":  response,
		"count":   len(response),
	})
}

// SettleBet is the manual settlement entry point; the match feed consumer
// drives the same engine call.
func (h *BetHandler) SettleBet(c *gin.Context) {
	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Won == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: won is required"})
		return
	}

	wager, err := h.engine.SettleBet(c.Request.Context(), c.Param("id"), *req.Won)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"wager":   wagerJSON(wager),
	})
}

func wagerJSON(wager *models.Wager) gin.H {
	out := gin.H{
		"id":                     wager.ID,
		"match_id":               wager.MatchID,
		"type":                   wager.Type,
		"selection":              wager.Selection,
		"odds":                   wager.Odds,
		"stake_cents":            wager.StakeCents,
		"potential_payout_cents": wager.PotentialPayoutCents,
		"status":                 wager.Status,
		"placed_at":              wager.PlacedAt,
	}
	if !wager.SettledAt.IsZero() {
		out["settled_at"] = wager.SettledAt
	}
	return out
}

func queryLimit(c *gin.Context, fallback int64) int64 {
	limitStr := c.DefaultQuery("limit", strconv.FormatInt(fallback, 10))
	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		return fallback
	}
	return limit
}
