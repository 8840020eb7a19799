package handlers

import (
	"net/http"

	"shawarma-sheesh-api/models"
	"shawarma-sheesh-api/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Shawarma Sheesh order lifecycle",
	})
}

// AdminSocket upgrades the request to the dashboard notification socket.
func (h *Handler) AdminSocket(c *gin.Context) {
	h.Notifier.ServeWS(c.Writer, c.Request)
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "Shawarma Sheesh API"})
}
