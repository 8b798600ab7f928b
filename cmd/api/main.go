package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"voicecampaign-platform/internal/accounts"
	"voicecampaign-platform/internal/agents"
	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/auth"
	"voicecampaign-platform/internal/calls"
	"voicecampaign-platform/internal/campaigns"
	"voicecampaign-platform/internal/clients"
	"voicecampaign-platform/internal/config"
	"voicecampaign-platform/internal/contacts"
	"voicecampaign-platform/internal/credits"
	"voicecampaign-platform/internal/dialer"
	"voicecampaign-platform/internal/httpapi"
	"voicecampaign-platform/internal/numbers"
	"voicecampaign-platform/internal/provider"
	"voicecampaign-platform/internal/reporting"
	"voicecampaign-platform/migrations"
	"voicecampaign-platform/pkg/logger"
	"voicecampaign-platform/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet; stderr is all we have.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Up(ctx, db); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis open failed", "error", err)
		os.Exit(1)
	}
	defer rdb.Close()

	adminTokens, err := auth.NewManager(auth.DomainAdmin, cfg.Auth.Issuer, cfg.Auth.Admin)
	if err != nil {
		log.Error("admin token manager", "error", err)
		os.Exit(1)
	}
	clientTokens, err := auth.NewManager(auth.DomainClient, cfg.Auth.Issuer, cfg.Auth.Client)
	if err != nil {
		log.Error("client token manager", "error", err)
		os.Exit(1)
	}

	accountSvc := accounts.NewService(accounts.NewPostgresRepo(db))
	clientSvc := clients.NewService(clients.NewPostgresRepo(db))
	agentSvc := agents.NewService(agents.NewPostgresRepo(db))
	numberSvc := numbers.NewService(numbers.NewPostgresRepo(db))
	campaignSvc := campaigns.NewService(campaigns.NewPostgresRepo(db))
	contactSvc := contacts.NewService(contacts.NewPostgresRepo(db))
	creditSvc := credits.NewService(db)
	callRepo := calls.NewPostgresRepo(db)
	reportSvc := reporting.NewService(callRepo)
	auditSvc := audit.NewService(audit.NewPostgresRepo(db), log)

	providerClient := provider.NewClient(cfg.Provider)
	dialSvc := dialer.NewService(
		campaignSvc,
		contactSvc,
		agentSvc,
		numberSvc,
		providerClient,
		dialer.NewRedisBatchCache(rdb),
		dialer.NewRedisCapLimiter(rdb, cfg.Provider.MaxConcurrentCalls),
		log,
	)
	webhooks := provider.NewWebhookProcessor(cfg.Provider.WebhookSecret, callRepo, contactSvc, creditSvc, log)

	server := httpapi.NewServer(httpapi.Deps{
		Log:          log,
		AdminTokens:  adminTokens,
		ClientTokens: clientTokens,
		Accounts:     accountSvc,
		Clients:      clientSvc,
		Agents:       agentSvc,
		Numbers:      numberSvc,
		Campaigns:    campaignSvc,
		Contacts:     contactSvc,
		Credits:      creditSvc,
		Dialer:       dialSvc,
		Reporting:    reportSvc,
		Audit:        auditSvc,
		Webhooks:     webhooks,
		HealthCheck: func(ctx context.Context) error {
			if err := utils.HealthCheck(ctx, db, 2*time.Second); err != nil {
				return err
			}
			return rdb.Ping(ctx).Err()
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
	log.Info("stopped")
}
