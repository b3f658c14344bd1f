package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/services"
)

type UserHandler struct {
	sessions *services.SessionService
	engine   *services.WagerEngine
}

func NewUserHandler(sessions *services.SessionService, engine *services.WagerEngine) *UserHandler {
	return &UserHandler{sessions: sessions, engine: engine}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	account, err := h.sessions.CurrentAccount(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": gin.H{
			"id":            account.ID,
			"username":      account.Username,
			"email":         account.Email,
			"balance_cents": account.BalanceCents,
			"balance":       models.FormatCurrency(account.BalanceCents),
			"total_bets":    account.TotalBets,
			"total_wins":    account.TotalWins,
			"created_at":    account.CreatedAt,
		},
	})
}

func (h *UserHandler) GetBalance(c *gin.Context) {
	snapshot, err := h.engine.Balance(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance_cents": snapshot.BalanceCents,
		"balance":       models.FormatCurrency(snapshot.BalanceCents),
		"total_bets":    snapshot.TotalBets,
		"total_wins":    snapshot.TotalWins,
	})
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Request.Context(), accountID(c), c.GetString("session_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}
