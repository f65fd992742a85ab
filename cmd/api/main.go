// @title Talk To My Lawyer API
// @version 1.0
// @description Letter generation service with referral codes and prepaid letter quotas.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/handlers"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/router"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/integrations"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/providers"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/services"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/worker"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/migrations"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := postgres.RunMigrations(db, migrations.GetFS())
	if err != nil {
		return err
	}
	if len(applied) > 0 {
		log.With("versions", applied).Info("Migrations applied")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	artifactRepo := postgres.NewArtifactRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	checkoutRepo := postgres.NewCheckoutRepository(db)

	// Collaborators
	notifier := services.NewOpsNotifier(log, cfg.Notify.SlackWebhookURL, cfg.Notify.SlackChannel)

	generator, err := integrations.NewGenerator(cfg.Generation)
	if err != nil {
		return err
	}

	archive, err := providers.NewArchive(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	defer archive.Close()

	mailer := providers.NewMailer(cfg.Mail)
	renderer := providers.NewPDFRenderer("talk-to-my-lawyer")

	// Services
	auditSvc := services.NewAuditService(auditRepo, log)
	ledger := services.NewQuotaLedger(subscriptionRepo, log)
	referrals := services.NewReferralLedger(referralRepo, notifier, log)
	accounts := services.NewAccountService(accountRepo, referrals, auditSvc, log, cfg.Auth.BCryptCost, cfg.Auth.AdminSignupSecret)
	checkouts := services.NewCheckoutService(checkoutRepo, ledger, auditSvc, log, cfg.Billing.CheckoutBaseURL, cfg.Billing.Currency)
	gatekeeper := services.NewGatekeeper(services.GatekeeperConfig{
		Ledger:    ledger,
		Artifacts: artifactRepo,
		Generator: generator,
		Archive:   archive,
		Audit:     auditSvc,
		Logger:    log,
		Timeout:   cfg.Generation.Timeout,
	})

	delivery := services.NewDeliveryService(gatekeeper, accountRepo, renderer, mailer, auditSvc, log, cfg.Mail.PublicURL)

	ledger.RefreshGauges(ctx)

	// Background jobs
	sweeper := worker.NewReservationSweeper(ledger, artifactRepo, notifier,
		cfg.Worker.SweepSchedule, cfg.Worker.ReservationTTL, log)
	if err := sweeper.Start(ctx); err != nil {
		return err
	}
	defer sweeper.Stop()

	// HTTP
	val := validator.New()
	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(db, generator.Name(), log),
		Auth:         handlers.NewAuthHandler(accounts, ledger, cfg, log, val),
		Referral:     handlers.NewReferralHandler(referrals, accounts, log, val),
		Subscription: handlers.NewSubscriptionHandler(ledger, checkouts, cfg.Billing.WebhookSecret, log, val),
		Artifact:     handlers.NewArtifactHandler(gatekeeper, log, val),
		Admin:        handlers.NewAdminHandler(accounts, ledger, gatekeeper, auditSvc, log, val),
		Delivery:     handlers.NewDeliveryHandler(delivery, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, auditSvc, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":      srv.Addr,
			"generator": generator.Name(),
			"db":        cfg.Database.Driver,
			"env":       cfg.Server.Environment,
		}).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
