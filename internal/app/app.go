// Package app wires together core, storage and transport layers.
package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/roomrelay/relay-server/internal/auth"
	"github.com/roomrelay/relay-server/internal/config"
	"github.com/roomrelay/relay-server/internal/core"
	"github.com/roomrelay/relay-server/internal/history"
	"github.com/roomrelay/relay-server/internal/keepalive"
	transporthttp "github.com/roomrelay/relay-server/internal/transport/http"
)

// App is the composed relay server.
type App struct {
	server        *stdhttp.Server
	hub           *core.Hub
	keep          *keepalive.Controller
	store         *history.Failover
	cfg           config.Config
	log           *zerolog.Logger
	sweepInterval time.Duration
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	authService, err := auth.NewService(cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("init auth: %w", err)
	}

	var durable history.Log
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			// The failover store absorbs outages; startup proceeds.
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).
				Msg("durable message store unreachable at startup")
		} else {
			logger.Info().Str("addr", cfg.RedisAddr).Msg("durable message store connected")
		}
		cancel()

		durable = history.NewRedisLog(client)
	} else {
		logger.Warn().Msg("no redis address configured, message history is process-local")
	}

	store := history.NewFailover(durable, history.NewMemoryLog(), logger)

	keep := keepalive.New(cfg.KeepAliveInterval)
	hub := core.NewHub(
		core.NewRegistry(),
		core.NewRoomIndex(),
		store,
		authService,
		keep,
		core.Options{
			MuteDuration: cfg.MuteDuration,
			BanDuration:  cfg.BanDuration,
			KickDelay:    cfg.KickDelay,
		},
		logger,
	)
	keep.OnFire(hub.BroadcastKeepAlive)

	return &App{
		server:        transporthttp.NewServer(hub, cfg, logger),
		hub:           hub,
		keep:          keep,
		store:         store,
		cfg:           cfg,
		log:           logger,
		sweepInterval: cfg.SweepInterval,
	}, nil
}

// Run starts the hub and HTTP server and blocks until context
// cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)
	go a.store.Local().Sweep(ctx, a.sweepInterval)
	a.keep.Enable()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	a.log.Info().Str("addr", a.cfg.Addr).Msg("relay server listening")

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup stops the scheduler and closes the durable store.
func (a *App) cleanup() {
	a.keep.Disable()
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close message store")
	} else {
		a.log.Info().Msg("message store closed")
	}
}
