package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/yuemei/linebot/internal/booking"
	"github.com/yuemei/linebot/internal/bot"
	"github.com/yuemei/linebot/internal/config"
	"github.com/yuemei/linebot/internal/intent"
	"github.com/yuemei/linebot/internal/line"
	"github.com/yuemei/linebot/internal/session"
	"github.com/yuemei/linebot/internal/store"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := store.NewBoltStore(cfg.DataDir + "/yuemei.db")
	if err != nil {
		logger.Fatal().Err(err).Msg("store")
	}
	defer db.Close()

	lineClient := line.NewClient(cfg.AccessToken)
	sessions := session.NewMemoryStore(cfg.SessionTTL)
	locks := session.NewLockManager()

	var classifier bot.Classifier
	if cfg.OpenAIAPIKey != "" {
		classifier = intent.NewClassifier(cfg.OpenAIAPIKey, []string{
			bot.IntentCancelBooking,
			bot.IntentStartBooking,
			bot.IntentQueryBookings,
			bot.IntentGreeting,
			bot.IntentTreatmentInfo,
		})
	}

	// Periodic cleanup of expired sessions and stale per-user locks.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessions.Sweep(); n > 0 {
				logger.Debug().Int("sessions", n).Msg("swept expired sessions")
			}
			locks.Cleanup(1 * time.Hour)
		}
	}()

	botHandler := bot.NewHandler(lineClient, db, sessions, locks, booking.NewFlow(), cfg.AdminUserID, classifier, logger)
	webhookHandler := line.NewWebhookHandler(cfg.ChannelSecret, botHandler.HandleMessage, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/webhook", webhookHandler.HandleIncoming)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("yuemei: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("yuemei: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("yuemei: stopped")
}
