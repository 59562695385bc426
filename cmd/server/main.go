package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/minimax-tictactoe/internal/api/controller"
	apirepository "ctchen222/minimax-tictactoe/internal/api/repository"
	"ctchen222/minimax-tictactoe/internal/api/service"
	"ctchen222/minimax-tictactoe/internal/bot"
	"ctchen222/minimax-tictactoe/internal/config"
	"ctchen222/minimax-tictactoe/internal/db"
	"ctchen222/minimax-tictactoe/internal/events"
	"ctchen222/minimax-tictactoe/internal/hub"
	"ctchen222/minimax-tictactoe/internal/logger"
	"ctchen222/minimax-tictactoe/internal/repository"
	"ctchen222/minimax-tictactoe/internal/server"
	"ctchen222/minimax-tictactoe/internal/telemetry"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file; environment variables override it")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)
	if cfg.UsesDefaultJWTSecret() {
		slog.Warn("JWT_SECRET is not set, login tokens are signed with the built-in development secret")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Redis
	rdb, err := db.NewRedisClient(ctx, cfg.Redis.ConnString)
	if err != nil {
		slog.Error("failed to initialize redis", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Initialize SQLite DB
	sqlDB, err := db.Connect(ctx, cfg.SQLitePath)
	if err != nil {
		slog.Error("failed to initialize sqlite db", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Create repositories
	gameRepo := repository.NewGameRepository(rdb, cfg.Redis.SessionTTL)
	playerRepo := repository.NewPlayerRepository(rdb)
	userRepo := apirepository.NewUserRepository(sqlDB)
	prefRepo := apirepository.NewPreferenceRepository(sqlDB)

	// Create services
	engine := bot.NewEngine()
	userService := service.NewUserService(userRepo, []byte(cfg.JWTSecret))
	gameService := service.NewGameService(engine)
	prefService := service.NewPreferenceService(prefRepo)

	// Create hub
	h := hub.NewHub(rdb, gameRepo, playerRepo, events.NewRedisPublisher(rdb), engine, hub.Options{
		ThinkDelay:     cfg.Game.ThinkDelay,
		FirstTurn:      cfg.Game.FirstTurn,
		ReconnectGrace: cfg.Game.ReconnectGrace,
	})
	hubDone := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(hubDone)
	}()

	// Create the Gin-based server
	srv := server.NewServer(h, userService, server.Controllers{
		User:       controller.NewUserController(userService),
		Game:       controller.NewGameController(gameService),
		Preference: controller.NewPreferenceController(prefService),
	}, cfg.StaticDir)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	<-hubDone

	slog.Info("Server exiting")
}
