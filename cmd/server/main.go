package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roomchat/internal/auth"
	"roomchat/internal/chat"
	"roomchat/internal/config"
	"roomchat/internal/directory"
	"roomchat/internal/handlers"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Resolve the room directory
	var source directory.Source
	if cfg.Chat.DatabaseURL != "" {
		pg, err := directory.NewPostgres(ctx, cfg.Chat.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open room directory")
		}
		defer pg.Close()
		source = pg
	} else {
		static, err := directory.NewStatic(cfg.Chat.Rooms)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid room list")
		}
		source = static
	}

	rooms, err := source.Rooms(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load room directory")
	}

	// Initialize the coordinator
	coordinator, err := chat.NewCoordinator(rooms, cfg.Chat.DefaultRoom, cfg.Chat.HistoryLimit)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize coordinator")
	}

	// Initialize handlers
	verifier := auth.NewVerifier([]byte(cfg.Auth.Secret))
	wsHandlers := handlers.NewWebSocketHandlers(verifier, coordinator)
	apiHandlers := handlers.NewAPIHandlers(coordinator)

	// Setup routes
	mux := http.NewServeMux()
	setupRoutes(mux, wsHandlers, apiHandlers)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Strs("rooms", rooms).Msg("server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

func setupRoutes(mux *http.ServeMux, wsHandlers *handlers.WebSocketHandlers, apiHandlers *handlers.APIHandlers) {
	mux.HandleFunc("GET /api/rooms", apiHandlers.ListRooms)
	mux.HandleFunc("GET /api/users", apiHandlers.ListUsers)
	mux.HandleFunc("GET /api/messages", apiHandlers.ListMessages)
	mux.HandleFunc("GET /api/members", apiHandlers.RoomMembers)

	// WebSocket route
	mux.HandleFunc("/ws", wsHandlers.HandleWebSocket)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
