package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/terminalboard/server/internal/adapters/http"
	"github.com/terminalboard/server/internal/adapters/store"
	"github.com/terminalboard/server/internal/adapters/tenor"
	"github.com/terminalboard/server/internal/adapters/ws"
	"github.com/terminalboard/server/internal/app"
	"github.com/terminalboard/server/internal/auth"
	"github.com/terminalboard/server/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	mongo, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongo.Close(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	messages := store.NewMessageRepository(mongo)
	users := store.NewUserRepository(mongo)

	sessions := app.NewRegistry()
	presence := app.NewPresence()
	broadcast := app.NewBroadcaster(presence, sessions)
	typing := app.NewTypingCoalescer(broadcast, cfg.TypingQuiet)
	ingest := app.NewIngest(messages, broadcast)
	debounce := app.NewDebounce(cfg.TypingDebounce)
	coord := app.NewCoordinator(sessions, presence, broadcast, typing, ingest, debounce)

	handlers := &router.Handlers{
		Messages: messages,
		Users:    users,
		Media:    tenor.NewClient(cfg.TenorAPIKey),
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, "terminalboard"),
		Hasher:   auth.NewPasswordHasher(),
	}
	wsCtl := ws.NewController(coord, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, handlers, wsCtl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("TerminalBoard server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
