package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oakwellhq/chatgate/internal/ai"
	"github.com/oakwellhq/chatgate/internal/chat"
	"github.com/oakwellhq/chatgate/internal/config"
	"github.com/oakwellhq/chatgate/internal/db"
	"github.com/oakwellhq/chatgate/internal/history"
	"github.com/oakwellhq/chatgate/internal/httpapi"
	"github.com/oakwellhq/chatgate/internal/quota"
	"github.com/oakwellhq/chatgate/internal/sched"
)

func main() {
	cfg := config.Load()

	if cfg.OpenRouterAPIKey == "" {
		log.Fatal("OPENROUTER_API_KEY is required")
	}

	gdb, err := db.Open(cfg.DBDSN, cfg.SQLite)
	if err != nil {
		log.Fatalf("record store: %v", err)
	}

	guard := quota.NewGuard(gdb, cfg.DailyLimit)
	hist := history.NewRepo(gdb)

	provider := ai.NewOpenRouterProvider(ai.OpenRouterConfig{
		BaseURL:     cfg.OpenRouterBaseURL,
		APIKey:      cfg.OpenRouterAPIKey,
		Model:       cfg.OpenRouterModel,
		SiteURL:     cfg.OpenRouterSiteURL,
		AppName:     cfg.OpenRouterAppName,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})

	svc := chat.NewService(guard, hist, provider, chat.Options{
		SystemPrompt:            cfg.SystemPrompt,
		ContextTurns:            cfg.ContextTurns,
		HistorySource:           cfg.HistorySource,
		Model:                   provider.Model(),
		RefundOnUpstreamFailure: cfg.RefundOnUpstreamFailure,
	})

	if cfg.ResetCron {
		resetter := sched.New(guard)
		if err := resetter.Start(); err != nil {
			log.Fatalf("reset scheduler: %v", err)
		}
		defer resetter.Stop()
	}

	router := httpapi.NewRouter(gdb, cfg, guard, svc)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("[server] listening on :%s (model=%s, daily_limit=%d, history=%s)",
			cfg.Port, cfg.OpenRouterModel, cfg.DailyLimit, cfg.HistorySource)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[server] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	if err := db.Close(gdb); err != nil {
		log.Printf("[server] close record store: %v", err)
	}
}
