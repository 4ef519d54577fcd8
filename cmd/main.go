package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"macrolog/app"
	"macrolog/config"
	"macrolog/logger"
	"macrolog/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.OpenDB(cfg)
	if err != nil {
		log.Fatal("database unavailable", "error", err)
	}

	bus := services.NewLocalBus()
	if cfg.RedisAddr != "" {
		bus, err = services.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisChannel, log)
		if err != nil {
			log.Fatal("redis bus unavailable", "error", err)
		}
	}
	defer bus.Close()

	oracle := services.NewAssistantOracle(services.AssistantConfig{
		BaseURL:      cfg.OpenAIBaseURL,
		APIKey:       cfg.OpenAIAPIKey,
		AssistantID:  cfg.FoodAssistantID,
		PollInterval: cfg.OraclePollInterval,
		Timeout:      cfg.OracleTimeout,
	}, log)
	if cfg.OpenAIAPIKey == "" || cfg.FoodAssistantID == "" {
		log.Warn("OPENAI_API_KEY or FOOD_AI not set; unknown foods cannot be resolved")
	}

	a := app.New(cfg, db, oracle, bus, log)
	if err := a.StartRealtime(ctx); err != nil {
		log.Fatal("realtime forwarder failed", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown", "error", err)
		}
		if err := a.Queue.Shutdown(shutdownCtx); err != nil {
			log.Warn("persist queue not drained", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server failed", "error", err)
	}
	log.Info("server stopped")
}
