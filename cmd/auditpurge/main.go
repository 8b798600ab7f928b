// Command auditpurge deletes audit log entries older than the retention
// window. Run it from cron (daily is plenty).
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"voicecampaign-platform/internal/audit"
	"voicecampaign-platform/internal/config"
	"voicecampaign-platform/pkg/logger"
	"voicecampaign-platform/pkg/utils"
)

const defaultRetention = 90 * 24 * time.Hour

func main() {
	retention := flag.Duration("retention", defaultRetention, "how long audit entries are kept")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env).With("job", "auditpurge")

	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
	if err != nil {
		log.Error("postgres open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := audit.NewService(audit.NewPostgresRepo(db), log)

	cutoff := time.Now().UTC().Add(-*retention)
	removed, err := svc.PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Error("purge failed", "cutoff", cutoff, "error", err)
		os.Exit(1)
	}
	log.Info("purge complete", "cutoff", cutoff, "removed", removed)
}
