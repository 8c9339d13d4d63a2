package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roomrelay/relay-server/internal/config"
	"github.com/roomrelay/relay-server/internal/core"
)

// NewServer builds the HTTP server: the websocket session endpoint
// plus the read-only stats surface.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	stats := NewStatsHandlers(hub, logger)
	router.GET("/health", stats.Health)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	api := router.Group("/api")
	{
		api.GET("/rooms", stats.Rooms)
		api.GET("/rooms/:id/messages", stats.RoomMessages)
		api.GET("/stats", stats.Stats)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
