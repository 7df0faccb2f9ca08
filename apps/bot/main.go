package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"baccarat-lite/apps/bot/internal/archive"
	"baccarat-lite/apps/bot/internal/auth"
	"baccarat-lite/apps/bot/internal/bot"
	"baccarat-lite/apps/bot/internal/config"
	"baccarat-lite/apps/bot/internal/gateway"
	"baccarat-lite/apps/bot/internal/logger"
	"baccarat-lite/apps/bot/internal/session"
	"baccarat-lite/apps/bot/internal/sweeper"
)

func main() {
	hashToken := flag.String("hash-token", "", "print the bcrypt hash for an admin token and exit")
	flag.Parse()

	if *hashToken != "" {
		h, err := auth.HashToken(*hashToken)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(h)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	store, sessionMode, err := session.NewStoreFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("mode", sessionMode).Msg("Failed to init session store")
	}
	sessions := session.NewManager(store, cfg.Engine.Road, log)
	defer sessions.Close()

	archiveService, archiveMode, err := archive.NewServiceFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("mode", archiveMode).Msg("Failed to init archive")
	}
	defer archiveService.Close()

	admin, err := auth.NewAdminAuth(cfg.AdminTokenHash)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid ADMIN_TOKEN_HASH")
	}

	hub := gateway.NewHub(log)
	defer hub.Close()

	botService, err := bot.New(bot.Config{
		Sessions:     sessions,
		Archive:      archiveService,
		Engine:       cfg.Engine,
		HistoryLimit: cfg.HistoryLimit,
		Publisher:    hub,
		Log:          log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init bot")
	}

	var line *gateway.LineHandler
	if cfg.LineChannelSecret != "" {
		client, err := gateway.NewLineClient(cfg.LineAPIBase, cfg.LineChannelToken, nil)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to init LINE client")
		}
		line = gateway.NewLineHandler(cfg.LineChannelSecret, client, botService, log)
	} else {
		log.Warn().Msg("LINE_CHANNEL_SECRET not set, /callback disabled")
	}

	router := gateway.NewRouter(gateway.RouterConfig{
		Line:    line,
		Hub:     hub,
		Archive: archive.NewHTTPHandler(archiveService, log),
		Admin:   admin,
		Log:     log,
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to init telegram bot")
		}
		log.Info().Str("account", api.Self.UserName).Msg("Telegram authorized")
		go gateway.NewTelegramPoller(api, botService, cfg.TelegramAllowedUsers, log).Run(ctx)
	}

	var scheduler *sweeper.Scheduler
	if cfg.SweepSchedule != "" && cfg.SessionIdleTTL > 0 {
		scheduler = sweeper.NewScheduler(log)
		job := sweeper.NewIdleSessionJob(sessions, botService, cfg.SessionIdleTTL, log)
		if err := scheduler.AddJob(cfg.SweepSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.SweepSchedule).Msg("Invalid sweep schedule")
		}
		// shoes left idle while the bot was down
		if err := scheduler.RunNow(job); err != nil {
			log.Warn().Err(err).Msg("Startup sweep failed")
		}
		scheduler.Start()
	}

	go func() {
		log.Info().
			Int("port", cfg.Port).
			Str("session_mode", sessionMode).
			Str("archive_mode", archiveMode).
			Str("strategy", cfg.Engine.Strategy).
			Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
}
