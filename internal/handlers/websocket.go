package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guzobus/guzo-backend/internal/services"
)

// WebSocketHandler upgrades the connection and subscribes the client to
// live seat updates for one trip
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.GetUint("userId")

		tripId, err := strconv.ParseUint(c.Query("tripId"), 10, 32)
		if err != nil || tripId == 0 {
			c.JSON(400, gin.H{"error": "tripId query parameter required"})
			return
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, userId, uint(tripId))
	}
}
