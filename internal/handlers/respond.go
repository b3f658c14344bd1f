package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vf4-sportsbook-backend/internal/services"
)

// respondError maps service errors onto HTTP statuses. Anything outside the
// known taxonomy is a 500 with a generic message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrAlreadySettled):
		c.JSON(http.StatusConflict, gin.H{"error": "Wager already settled"})
	case errors.Is(err, services.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient funds"})
	case errors.Is(err, services.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func accountID(c *gin.Context) string {
	return c.GetString("account_id")
}
