package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/adapters/store"
	"github.com/terminalboard/server/internal/domain"
)

// AdminListMessages serves the moderation view: newest-first with simple
// before-timestamp pagination.
func (h *Handlers) AdminListMessages(c *gin.Context) {
	room := domain.NormalizeRoom(c.Query("room"))
	limit := parseLimit(c.Query("limit"), defaultHistoryLimit, maxHistoryLimit)

	messages, err := h.Messages.ListRecent(c.Request.Context(), room, limit, parseBefore(c.Query("before")))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("admin fetch messages")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching admin messages"})
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handlers) AdminDeleteMessage(c *gin.Context) {
	id := c.Param("id")

	err := h.Messages.DeleteByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "MESSAGE NOT FOUND"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Str("id", id).Msg("admin delete message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error deleting message"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handlers) AdminListUsers(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 100, 500)

	users, err := h.Users.List(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("admin list users")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching users"})
		return
	}
	if users == nil {
		users = []domain.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
