package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notaria/internal/casetype"
	"notaria/internal/config"
	"notaria/internal/domain"
	"notaria/internal/email/noop"
	"notaria/internal/email/ses"
	"notaria/internal/extraction"
	"notaria/internal/generation"
	"notaria/internal/handler"
	"notaria/internal/port"
	"notaria/internal/provider"
	"notaria/internal/provider/claude"
	"notaria/internal/provider/gemini"
	"notaria/internal/provider/openai"
	"notaria/internal/repository/postgres"
	"notaria/internal/router"
	"notaria/internal/service"
	s3storage "notaria/internal/storage/s3"
	"notaria/internal/template"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	caseRepo := postgres.NewCaseRepo(db)
	fileRepo := postgres.NewCaseFileRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	// Initialize storage
	fileStore, err := s3storage.NewStore(context.Background(), &cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}

	// Static catalogs
	caseTypes, err := casetype.Load(cfg.Catalog.CaseTypesPath)
	if err != nil {
		return fmt.Errorf("failed to load case types: %w", err)
	}
	templates, err := template.NewRegistry(cfg.Catalog.TemplatesDir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	// AI providers
	providers, err := provider.NewSet(cfg.AI, map[domain.AIModel]provider.Factory{
		domain.AIModelClaude: func(pc config.ProviderConfig, maxTokens int) port.AIProvider { return claude.New(pc, maxTokens) },
		domain.AIModelGemini: func(pc config.ProviderConfig, maxTokens int) port.AIProvider { return gemini.New(pc, maxTokens) },
		domain.AIModelOpenAI: func(pc config.ProviderConfig, maxTokens int) port.AIProvider { return openai.New(pc, maxTokens) },
	})
	if err != nil {
		return fmt.Errorf("failed to configure AI providers: %w", err)
	}
	log.Printf("AI providers available: %v (default %s)", providers.Available(), providers.Default())

	notifier, err := newNotifier(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Initialize services
	orchestrator := extraction.NewOrchestrator(providers, extraction.Options{
		MaxTokens:     cfg.AI.MaxTokens,
		AnalyzeImages: cfg.AI.AnalyzeImages,
	})
	generator := generation.NewGenerator(providers, templates, cfg.AI.MaxTokens)
	authSvc := service.NewAuthService(cfg.JWT)
	caseSvc := service.NewCaseService(caseRepo, fileRepo, docRepo, caseTypes, fileStore, orchestrator, generator, notifier,
		service.CaseServiceConfig{
			MaxFileSizeMB:     cfg.S3.MaxFileSizeMB,
			ExtractionTimeout: cfg.Pipeline.ExtractionTimeout(),
			GenerationTimeout: cfg.Pipeline.GenerationTimeout(),
			AnalyzeImages:     cfg.AI.AnalyzeImages,
			DefaultModel:      providers.Default(),
			SignedURLTTL:      time.Duration(cfg.S3.PresignExpiry) * time.Second,
		})

	// Background stale-stage worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	worker := service.NewStaleStageWorker(caseRepo, caseSvc, service.StaleStageConfig{
		PollInterval: time.Duration(cfg.Worker.PollIntervalSecs) * time.Second,
		StaleAfter:   time.Duration(cfg.Worker.StaleAfterSecs) * time.Second,
		BatchSize:    cfg.Worker.BatchSize,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(workerCtx)
	}()

	// Setup router
	r := router.Setup(authSvc, router.Handlers{
		Case:     handler.NewCaseHandler(caseSvc, caseTypes),
		Document: handler.NewDocumentHandler(caseSvc),
		CaseType: handler.NewCaseTypeHandler(caseTypes),
		Health:   handler.NewHealthHandler(db, providers.Available),
	}, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	stopWorker()
	<-workerDone
	// in-flight extractions finish against their own deadline
	caseSvc.Wait()
	log.Printf("Server stopped")
	return nil
}

func newNotifier(cfg *config.EmailConfig) (port.Notifier, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESNotifier(cfg)
	default:
		return noop.NewNoopNotifier(cfg.FrontendURL), nil
	}
}
