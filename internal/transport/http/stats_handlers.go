package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomrelay/relay-server/internal/core"
	"github.com/roomrelay/relay-server/internal/proto"
)

// StatsHandlers is the read-only surface over the registries. Nothing
// here mutates core state.
type StatsHandlers struct {
	hub     *core.Hub
	log     *zerolog.Logger
	started time.Time
}

// NewStatsHandlers creates the read-side handlers.
func NewStatsHandlers(hub *core.Hub, logger *zerolog.Logger) *StatsHandlers {
	return &StatsHandlers{hub: hub, log: logger, started: time.Now()}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatsResponse is the process snapshot.
type StatsResponse struct {
	Sessions         int              `json:"sessions"`
	Rooms            []proto.RoomInfo `json:"rooms"`
	KeepAliveEnabled bool             `json:"keepAliveEnabled"`
	UptimeSeconds    int64            `json:"uptimeSeconds"`
}

// Health reports process liveness.
// GET /health
func (h *StatsHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Rooms lists occupied rooms with member counts.
// GET /api/rooms
func (h *StatsHandlers) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, proto.RoomsListEvent{Rooms: h.roomInfos()})
}

// RoomMessages returns a room's visible history window.
// GET /api/rooms/:id/messages
func (h *StatsHandlers) RoomMessages(c *gin.Context) {
	room := c.Param("id")
	if err := core.ValidateRoomID(room); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	msgs, err := h.hub.History().Recent(c.Request.Context(), room)
	if err != nil {
		h.log.Error().Err(err).Str("room", room).Msg("read room history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	out := make([]proto.ChatMessageEvent, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, chatMessageEvent(msg))
	}
	c.JSON(http.StatusOK, gin.H{"room": room, "messages": out})
}

// Stats returns the process snapshot.
// GET /api/stats
func (h *StatsHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		Sessions:         h.hub.Registry().Count(),
		Rooms:            h.roomInfos(),
		KeepAliveEnabled: h.hub.KeepAliveEnabled(),
		UptimeSeconds:    int64(time.Since(h.started).Seconds()),
	})
}

func (h *StatsHandlers) roomInfos() []proto.RoomInfo {
	counts := h.hub.Rooms().Counts()
	out := make([]proto.RoomInfo, 0, len(counts))
	for _, rc := range counts {
		out = append(out, proto.RoomInfo{ID: rc.Room, UserCount: rc.Users})
	}
	return out
}
