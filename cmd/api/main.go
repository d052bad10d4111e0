package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/api/handlers"
	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/approval"
	"github.com/dvloznov/ai-accountant/internal/archive"
	"github.com/dvloznov/ai-accountant/internal/auth"
	"github.com/dvloznov/ai-accountant/internal/chat"
	"github.com/dvloznov/ai-accountant/internal/config"
	"github.com/dvloznov/ai-accountant/internal/export"
	"github.com/dvloznov/ai-accountant/internal/extraction"
	"github.com/dvloznov/ai-accountant/internal/jobs/inmemory"
	"github.com/dvloznov/ai-accountant/internal/ledger"
	"github.com/dvloznov/ai-accountant/internal/logger"
	"github.com/dvloznov/ai-accountant/internal/webhook"
)

func main() {
	cfg, err := config.Load("api", os.Args[1:], os.LookupEnv)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log, err := logger.NewWithLevel(cfg.Server.LogLevel, cfg.Server.LogJSON)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to create logger")
	}

	// Amounts are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	// Ledger
	ledgerOpts := []ledger.Option{ledger.WithLogger(log), ledger.WithLatency(cfg.Ledger.Latency)}
	if cfg.Ledger.SnapshotPath != "" {
		ledgerOpts = append(ledgerOpts, ledger.WithSnapshot(cfg.Ledger.SnapshotPath))
	}
	if cfg.Ledger.DemoData {
		ledgerOpts = append(ledgerOpts, ledger.WithDemoData())
	}
	store, err := ledger.NewStore(ledgerOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger")
	}
	defer store.Close()

	// Auth
	secret := cfg.Server.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn().Msg("No JWT secret configured - using a random one, sessions end on restart")
	}
	authSvc, err := auth.NewService(secret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth service")
	}
	if err := authSvc.SeedDemoUser(cfg.Server.DemoPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed demo user")
	}

	extractor := buildExtractor(ctx, cfg.Extraction, cfg.ResolvedProvider(), log)

	// Export queue
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(inmemory.Config{
		Workers:    cfg.Export.Workers,
		MaxRetries: cfg.Export.MaxRetries,
	}, jobStore)

	sinks, closeSinks, err := export.NewSinks(ctx, cfg.Export, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create export sinks")
	}
	defer closeSinks()

	workflowOpts := []approval.Option{}
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	if len(sinks) > 0 {
		exporter := export.NewExporter(log, sinks...)
		workflowOpts = append(workflowOpts, approval.WithPublisher(jobQueue))

		go func() {
			log.Info().Strs("sinks", exporter.Sinks()).Msg("Starting export worker")
			if err := jobQueue.Start(workerCtx, exporter.Handle); err != nil {
				log.Error().Err(err).Msg("Export worker stopped with error")
			}
		}()
	} else {
		log.Info().Msg("No export sinks configured - approved entries stay local")
	}
	workflow := approval.New(store, log, workflowOpts...)

	// Chat
	chatOpts := []chat.Option{chat.WithHistory(buildHistory(ctx, cfg.Chat, log))}
	if cfg.Webhook.URL != "" {
		chatOpts = append(chatOpts, chat.WithSender(webhook.NewGateway(webhook.Config{
			URL:          cfg.Webhook.URL,
			TextTimeout:  cfg.Webhook.TextTimeout,
			ImageTimeout: cfg.Webhook.ImageTimeout,
		}, log)))
	} else {
		log.Warn().Msg("No webhook URL configured - drafts are not relayed")
	}
	if cfg.Chat.ArchiveBucket != "" {
		archiver, err := archive.NewGCSArchiver(ctx, cfg.Chat.ArchiveBucket, export.ClientOptions(cfg.Export)...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create upload archiver")
		}
		defer archiver.Close()
		chatOpts = append(chatOpts, chat.WithArchiver(archiver))
	}
	chatSvc := chat.NewService(extractor, workflow, log, chatOpts...)

	router := handlers.Router{
		Auth:         handlers.NewAuthHandler(authSvc, log),
		Transactions: handlers.NewTransactionsHandler(store, log),
		Entries:      handlers.NewEntriesHandler(store, workflow, log),
		Chat:         handlers.NewChatHandler(chatSvc, log),
		Reports:      handlers.NewReportsHandler(store, log),
		Jobs:         handlers.NewJobsHandler(jobStore, log),
	}

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(authSvc, handlers.PublicPaths...)(router.Mux()),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Webhook.ImageTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("provider", cfg.ResolvedProvider()).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}

func buildExtractor(ctx context.Context, cfg config.ExtractionConfig, provider string, log zerolog.Logger) extraction.Extractor {
	rules := extraction.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := extraction.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.RulesFile).Msg("Failed to load extraction rules")
		}
		rules = loaded
	}
	fallback := extraction.NewRuleExtractor(rules)

	var client extraction.ModelClient
	var err error
	switch provider {
	case config.ProviderGemini:
		client, err = extraction.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case config.ProviderClaude:
		client, err = extraction.NewClaudeClient(cfg.AnthropicAPIKey, cfg.ClaudeModel)
	default:
		return fallback
	}
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("Model client unavailable - using keyword rules")
		return fallback
	}
	return extraction.NewModelExtractor(client, fallback, log)
}

func buildHistory(ctx context.Context, cfg config.ChatConfig, log zerolog.Logger) chat.History {
	if cfg.RedisURL == "" {
		return chat.NewMemoryHistory(cfg.HistoryLimit)
	}
	client, err := chat.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Error().Err(err).Msg("Redis unavailable - keeping chat history in memory")
		return chat.NewMemoryHistory(cfg.HistoryLimit)
	}
	log.Info().Str("addr", chat.RedisAddr(cfg.RedisURL)).Msg("Chat history stored in Redis")
	return chat.NewRedisHistory(client, cfg.HistoryLimit, cfg.HistoryTTL)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
