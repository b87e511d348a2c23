package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/uxforge/uxforge/internal/api"
	"github.com/uxforge/uxforge/internal/chat"
	"github.com/uxforge/uxforge/internal/config"
	"github.com/uxforge/uxforge/internal/document"
	"github.com/uxforge/uxforge/internal/intent"
	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/internal/orchestrator"
	"github.com/uxforge/uxforge/internal/progress"
	"github.com/uxforge/uxforge/internal/ratelimit"
	"github.com/uxforge/uxforge/internal/sandbox"
	"github.com/uxforge/uxforge/internal/session"
	"github.com/uxforge/uxforge/internal/smartctx"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load(os.Getenv("UXFORGE_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logg.Sync()

	logg.Info("starting uxforge server", "addr", cfg.ListenAddr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// LLM collaborator
	llmClient, err := llm.NewGeminiClient(ctx, cfg.Gemini, logg)
	if err != nil {
		logg.Fatal("failed to create gemini client", "error", err)
	}
	logg.Info("gemini client ready", "model", cfg.Gemini.TextModel)

	// Sandbox provider
	provider, err := sandbox.NewDockerProvider(cfg.Sandbox.Image, cfg.Sandbox.Port, logg)
	if err != nil {
		logg.Fatal("failed to create sandbox provider", "error", err)
	}
	defer provider.Close()

	logg.Info("ensuring sandbox image is available", "image", cfg.Sandbox.Image)
	if err := provider.EnsureImage(ctx); err != nil {
		logg.Fatal("failed to ensure sandbox image", "error", err)
	}

	registry := sandbox.NewRegistry()

	// Session persistence
	storage, err := session.NewDiskStorage(cfg.StorePath)
	if err != nil {
		logg.Fatal("failed to initialize session storage", "error", err)
	}
	sessions := session.NewManager(storage, logg)
	logg.Info("session storage ready", "path", cfg.StorePath)

	// Context assembly
	instructions, err := smartctx.LoadInstructions(cfg.InstructionsPath)
	if err != nil {
		logg.Fatal("failed to load instruction assets", "error", err)
	}
	assembler := smartctx.NewAssembler(smartctx.WordCountEstimator{}, instructions, logg)

	// Generation pipeline
	orch := orchestrator.New(llmClient, provider, registry, orchestrator.Options{
		SandboxTimeout: cfg.Sandbox.CreateTimeout,
		Port:           cfg.Sandbox.Port,
		PollAttempts:   cfg.Sandbox.PollAttempts,
		PollDelay:      cfg.Sandbox.PollDelay,
	}, logg)

	hub := progress.NewHub()
	coarse := intent.NewCoarseClassifier(llmClient, logg)
	clarifier := intent.NewClarifier(llmClient, logg)
	chatService := chat.NewService(assembler, coarse, clarifier, orch, llmClient, hub, logg)
	extractor := document.NewExtractor(llmClient, logg)

	// HTTP surface
	rateLimiter := ratelimit.NewLimiter(cfg.Limits.RequestsPerHour, cfg.Limits.Burst)
	progressServer := progress.NewServer(hub, logg)
	handler := api.NewHandler(sessions, chatService, assembler, extractor, orch, registry, logg)
	router := handler.SetupRoutes(progressServer, rateLimiter, cfg.Limits.RequestsPerHour)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logg.Info("server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Fatal("server forced to shutdown", "error", err)
	}

	logg.Info("server stopped cleanly")
}
