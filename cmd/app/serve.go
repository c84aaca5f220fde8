package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ai-chat-bridge/internal/application"
	"ai-chat-bridge/internal/config"
	"ai-chat-bridge/internal/domain/ports/repository"
	aiAdapters "ai-chat-bridge/internal/infra/adapters/ai"
	tele "ai-chat-bridge/internal/infra/adapters/telegram"
	pg "ai-chat-bridge/internal/infra/db/postgres"
	httpapi "ai-chat-bridge/internal/infra/http"
	"ai-chat-bridge/internal/infra/logging"
	"ai-chat-bridge/internal/infra/media"
	"ai-chat-bridge/internal/infra/memory"
	"ai-chat-bridge/internal/infra/metrics"
	red "ai-chat-bridge/internal/infra/redis"
	"ai-chat-bridge/internal/infra/web"
	"ai-chat-bridge/internal/infra/worker"
	"ai-chat-bridge/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the webhook server and the Telegram poller",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(cfgPath, devMode)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	// ---- AI ----
	fetcherOpts := []media.Option{}
	if cfg.Twilio.AccountSID != "" {
		fetcherOpts = append(fetcherOpts, media.WithBasicAuth(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, media.TwilioHosts...))
	}
	fetcher := media.NewFetcher(cfg.Media.Timeout, cfg.Media.MaxBytes, fetcherOpts...)

	provider, err := aiAdapters.NewProvider(ctx, cfg.AI, fetcher, logger)
	if err != nil {
		return fmt.Errorf("ai provider: %w", err)
	}
	tokens := aiAdapters.NewTokenCounter(provider.Model(), logger)
	logger.Info().Str("provider", provider.Name()).Str("model", provider.Model()).Msg("AI provider ready")

	metrics.MustRegister()
	metrics.SetBuildInfo(cfg.Bot.Version, provider.Name())

	// ---- Sessions + use cases ----
	store := memory.NewSessionStore(cfg.SystemPrompt(),
		memory.WithIdleTTL(cfg.Session.IdleTTL),
		memory.WithMaxSessions(cfg.Session.MaxSessions),
		memory.WithLogger(logger),
	)
	composer := usecase.NewComposerUseCase(store, provider, provider, logger, cfg.Runtime.Dev,
		usecase.WithTokenCounter(tokens, provider.Name()),
		usecase.WithCallTimeout(cfg.AI.RequestTimeout),
	)
	texts := usecase.NewTexts(usecase.Identity{
		Name:      cfg.Bot.Name,
		Creator:   cfg.Bot.Creator,
		Version:   cfg.Bot.Version,
		PoweredBy: provider.Name(),
	})
	router := usecase.NewRouterUseCase(store, composer, texts, logger, cfg.Runtime.Dev)

	// ---- Redis (optional) ----
	var guard repository.DeliveryGuard = memory.NewDeliveryGuard()
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		guard = red.NewDeliveryGuard(redisClient)
		logger.Info().Msg("delivery dedup backed by redis")
	}

	// ---- Postgres (optional) ----
	var usage repository.UsageRepository
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		if err := pg.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
		usage = pg.NewUsageRepo(pool)
		logger.Info().Msg("usage ledger enabled")
	}

	bridge := application.NewBridge(router, store, guard, usage, cfg.Redis.DedupTTL, logger, cfg.Runtime.Dev)

	// ---- HTTP ----
	var auth *web.AuthManager
	if cfg.Admin.Enabled {
		auth = web.NewAuthManager(cfg.Admin.JWTSecret, adminTokenTTL)
	}
	site := web.NewServer(bridge, web.Info{
		Bot:      cfg.Bot.Name,
		Creator:  cfg.Bot.Creator,
		Version:  cfg.Bot.Version,
		Provider: provider.Name(),
	}, cfg.HTTP.WebhookPath, cfg.HTTP.RequestTimeout, auth, logger)
	server := httpapi.NewServer(cfg.HTTP, site.Routes(), logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error {
		store.Run(gctx, cfg.Session.SweepInterval)
		return nil
	})

	// ---- Telegram (optional) ----
	if cfg.Telegram.Token != "" {
		if err := startTelegram(gctx, g, cfg, bridge, logger); err != nil {
			return err
		}
	}

	logger.Info().
		Int("port", cfg.HTTP.Port).
		Str("webhook", cfg.HTTP.WebhookPath).
		Bool("admin", auth != nil).
		Msg("bridge started")

	err = g.Wait()
	logger.Info().Msg("shutdown complete")
	return err
}

func startTelegram(ctx context.Context, g *errgroup.Group, cfg *config.Config, bridge tele.Deliverer, logger *zerolog.Logger) error {
	pool := worker.NewPool(cfg.Telegram.Workers, logger)
	bot, err := tele.NewBot(cfg.Telegram.Token, bridge, pool, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	pool.Start(ctx)
	g.Go(func() error {
		defer pool.Stop()
		return bot.Run(ctx)
	})
	return nil
}
