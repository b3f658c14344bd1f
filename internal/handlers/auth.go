package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vf4-sportsbook-backend/internal/models"
	"vf4-sportsbook-backend/internal/services"
)

type AuthHandler struct {
	sessions *services.SessionService
}

func NewAuthHandler(sessions *services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login accepts any username/email pair; first login opens an account with
// the starting balance, later logins reattach the same account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	account, token, err := h.sessions.Login(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"account": gin.H{
			"id":            account.ID,
			"username":      account.Username,
			"email":         account.Email,
			"balance_cents": account.BalanceCents,
			"balance":       models.FormatCurrency(account.BalanceCents),
			"created_at":    account.CreatedAt,
		},
	})
}
