// Command server runs the HVAC site API: the contact and emergency lead
// endpoints, the reviews proxy, health and metrics.
//
//	@title			HVAC Site Backend API
//	@version		1.0.0
//	@description	Lead capture (contact and emergency forms) and reviews proxy for the company website.
//	@BasePath		/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/hvac-site-backend/internal/config"
	httpapi "github.com/tbourn/hvac-site-backend/internal/http"
	"github.com/tbourn/hvac-site-backend/internal/mailer"
	"github.com/tbourn/hvac-site-backend/internal/observability"
	"github.com/tbourn/hvac-site-backend/internal/repo"
	"github.com/tbourn/hvac-site-backend/internal/services"
	"github.com/tbourn/hvac-site-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// janitorEvery is how often expired idempotency records are purged.
const janitorEvery = 15 * time.Minute

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetupLogger(os.Stderr, cfg.LogPretty, sysutil.FirstNonEmpty(cfg.OTEL.ServiceName, observability.DefaultServiceName))
	sysutil.SetLogLevel(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	go runJanitor(ctx, db)

	deps := httpapi.Deps{
		DB:     db,
		Sender: newSender(cfg.Mail),
		Pager:  newPager(ctx, cfg.OnCallTopicARN),
	}

	r := gin.New()
	if err := httpapi.RegisterRoutes(r, deps, cfg); err != nil {
		log.Fatal().Err(err).Msg("register routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Str("business", cfg.Business.Name).
			Bool("mail_enabled", cfg.Mail.APIKey != "").
			Bool("oncall_pager", deps.Pager != nil).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newSender returns the Resend sender, or mailer.Disabled when no key is set
// so submissions fail with the phone fallback instead of crashing.
func newSender(mc config.MailConfig) mailer.Sender {
	s, err := mailer.NewResendSender(mailer.ResendConfig{
		APIKey: mc.APIKey,
		From:   mc.From,
		RPS:    mc.RPS,
	})
	if err != nil {
		log.Warn().Err(err).Msg("mail provider not configured; lead submissions will fail")
		return mailer.Disabled{}
	}
	return s
}

// newPager returns an SNS pager when a topic is configured. A nil Pager
// disables on-call pages.
func newPager(ctx context.Context, topicARN string) services.Pager {
	if topicARN == "" {
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("aws config unavailable; on-call paging disabled")
		return nil
	}
	return services.NewSNSPager(awsCfg, topicARN)
}

// runJanitor purges expired idempotency records until ctx is done.
func runJanitor(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(janitorEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.DeleteExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("expired idempotency records purged")
			}
		}
	}
}
