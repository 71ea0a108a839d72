package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gbarros/docfields/internal/api"
	"github.com/gbarros/docfields/internal/config"
	"github.com/gbarros/docfields/internal/llm"
	"github.com/gbarros/docfields/internal/ner"
	"github.com/gbarros/docfields/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional collaborators: both degrade gracefully when unset.
	var recognizer ner.Recognizer
	if cfg.NERBaseURL != "" {
		recognizer = ner.NewClient(cfg.NERBaseURL, cfg.NERTimeout)
	}
	var llmClient *llm.Client
	var completer llm.Completer
	if cfg.DelegationEnabled() {
		llmClient = llm.NewClient(cfg, log)
		completer = llmClient
	}

	engine := pipeline.NewEngine(recognizer, completer, cfg, log)
	orch := pipeline.NewOrchestrator(cfg, engine, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, llmClient, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if llmClient != nil {
			llmClient.Close()
		}
	}()

	log.Info("starting docfields",
		"port", cfg.Port,
		"ner_enabled", recognizer != nil,
		"delegation_enabled", completer != nil)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
