package handlers

import (
	"net/http"
	"time"

	"asobibox/internal/room"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the read-only operational dashboard API. Every
// endpoint only calls snapshot methods on the manager; nothing here can
// mutate core state.
type AdminHandler struct {
	manager   *room.Manager
	startTime time.Time
}

func NewAdminHandler(manager *room.Manager) *AdminHandler {
	return &AdminHandler{manager: manager, startTime: time.Now()}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats := h.manager.Stats()
	c.JSON(http.StatusOK, gin.H{
		"uptime":               time.Since(h.startTime).Round(time.Second).String(),
		"roomCount":            stats.RoomCount,
		"sessionCount":         stats.SessionCount,
		"disconnectTimerCount": stats.DisconnectTimerCount,
		"roomsByStatus":        stats.RoomsByStatus,
	})
}

func (h *AdminHandler) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Rooms())
}

func (h *AdminHandler) Room(c *gin.Context) {
	detail, ok := h.manager.RoomDetail(c.Param("code"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
