package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/masterok/backend/internal/config"
	"github.com/masterok/backend/internal/conversation"
	"github.com/masterok/backend/internal/db"
	httpapi "github.com/masterok/backend/internal/http"
	"github.com/masterok/backend/internal/knowledge"
	"github.com/masterok/backend/internal/pricing"
	"github.com/masterok/backend/internal/service"
	"github.com/masterok/backend/internal/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "masterok-backend").Logger()

	ctx := context.Background()

	var store db.Store
	if cfg.DatabaseURL == "" {
		store = db.NewMemoryStore()
		logger.Info().Msg("using in-memory store")
	} else {
		pg, err := db.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect db")
		}
		store = pg
	}
	defer store.Close()

	var analyzer vision.Analyzer
	var transcriber vision.Transcriber = vision.NullTranscriber{}
	if cfg.OpenAIAPIKey == "" {
		analyzer = vision.NewRuleAnalyzer()
		logger.Info().Msg("using rule-based vision analyzer")
	} else {
		analyzer = vision.NewOpenAIAnalyzer(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
		transcriber = vision.NewWhisperTranscriber(cfg.OpenAIAPIKey, logger)
	}

	engine := conversation.NewEngine(logger)
	kb := knowledge.NewBase()
	pricer := pricing.NewEngine(cfg.MinJobCost, cfg.MaxJobCost, cfg.CommissionRate, logger)
	matcher := service.NewMatcher(store, store, cfg.MaxDailyJobs, logger)
	orchestrator := service.NewOrchestrator(engine, kb, pricer, matcher, analyzer, transcriber, store, service.LogSink{Logger: logger}, logger)
	terminal := service.NewTerminal(store, matcher, logger)

	if cfg.ConversationTTL > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ConversationTTL / 2)
			defer ticker.Stop()
			for range ticker.C {
				engine.Sweep(cfg.ConversationTTL)
			}
		}()
	}

	router := httpapi.Router(cfg, store, orchestrator, terminal, kb, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
