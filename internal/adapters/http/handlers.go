package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/adapters/store"
	"github.com/terminalboard/server/internal/auth"
	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type Handlers struct {
	Messages *store.MessageRepository
	Users    *store.UserRepository
	Media    core.MediaSearcher
	Tokens   *auth.TokenManager
	Hasher   *auth.PasswordHasher
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "TerminalBoard API is running"})
}

// ListMessages serves chat history oldest-first so clients can render
// top to bottom without reordering.
func (h *Handlers) ListMessages(c *gin.Context) {
	room := domain.NormalizeRoom(c.Query("room"))
	limit := parseLimit(c.Query("limit"), defaultHistoryLimit, maxHistoryLimit)

	messages, err := h.Messages.ListRecent(c.Request.Context(), room, limit, parseBefore(c.Query("before")))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("fetch chat messages")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error fetching messages"})
		return
	}

	// Newest-first from the store; reverse into chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handlers) SearchGifs(c *gin.Context) {
	q := c.Query("q")
	limit := parseLimit(c.Query("limit"), 12, 24)

	results, err := h.Media.Search(c.Request.Context(), q, int(limit))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("gif search")
		c.JSON(http.StatusBadGateway, gin.H{"message": "GIF search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": urls(results)})
}

func (h *Handlers) TrendingGifs(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 12, 24)

	results, err := h.Media.Trending(c.Request.Context(), int(limit))
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("gif trending")
		c.JSON(http.StatusBadGateway, gin.H{"message": "GIF trending failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": urls(results)})
}

func urls(results []core.MediaResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.URL)
	}
	return out
}

// parseBefore reads an RFC3339 pagination cursor; anything unparseable
// means "no cursor".
func parseBefore(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseLimit(raw string, def, max int64) int64 {
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
