package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fintrack-server/src/api"
	"fintrack-server/src/config"
	"fintrack-server/src/db"
	"fintrack-server/src/fx"
	"fintrack-server/src/handlers"
	"fintrack-server/src/insights"
	"fintrack-server/src/logger"
	"fintrack-server/src/mailer"
	"fintrack-server/src/report"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", "console")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	ctx := logger.WithContext(context.Background(), log)

	// Connect to database
	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer store.Close()

	cache, err := db.NewLedgerCache()
	if err != nil {
		log.Fatal().Err(err).Msg("cache init failed")
	}
	defer cache.Close()

	converter, err := fx.NewConverter(cfg.CurrencyBase, cfg.FXAPIURL, cfg.FXTTL, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("fx converter init failed")
	}
	defer converter.Close()

	gemini := insights.NewGemini(cfg.GeminiModel)
	env := &handlers.Env{
		Store:        store,
		Cache:        cache,
		Reports:      report.NewGenerator(store),
		FX:           converter,
		Insights:     gemini,
		Scanner:      gemini,
		Mailer:       mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		JWTSecret:    cfg.JWTSecret,
		BaseCurrency: cfg.CurrencyBase,
	}

	// Router
	router := api.NewRouter(env, api.Options{
		DemoMode:       cfg.DemoMode,
		AllowedOrigins: cfg.AllowedOrigins,
		MailEnabled:    cfg.MailEnabled(),
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", string(store.Dialect())).Bool("demo", cfg.DemoMode).Msg("API server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
