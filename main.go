package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/deadline-server/api"
	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/billing"
	"github.com/carson-networks/deadline-server/internal/config"
	"github.com/carson-networks/deadline-server/internal/logging"
	"github.com/carson-networks/deadline-server/internal/notify"
	"github.com/carson-networks/deadline-server/internal/operator"
	"github.com/carson-networks/deadline-server/internal/reminder"
	"github.com/carson-networks/deadline-server/internal/service"
	"github.com/carson-networks/deadline-server/internal/storage"
)

func main() {
	logger := logging.SetupLogging()
	logger.Info("deadline-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logger.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}
	if envConfig.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set")
		return
	}

	// run returns only after its deferred cleanups, so Fatal here exits non-zero with the
	// operator drained and the database closed.
	if err := run(logger, envConfig); err != nil {
		logger.WithError(err).Fatal("deadline-server stopped with error")
		return
	}
	logger.Info("deadline-server stopped")
}

func run(logger *logrus.Logger, envConfig *config.Config) error {
	dbStorage, err := storage.NewStorage(envConfig)
	if err != nil {
		return fmt.Errorf("storage.NewStorage: %w", err)
	}
	defer dbStorage.Close()

	delegator := operator.NewOperatorDelegator(dbStorage, envConfig.OperatorWorkers, logger)
	delegator.Start()
	defer delegator.Stop()

	mailer, err := notify.NewMailer(notify.SMTPConfig{
		Host:     envConfig.SMTPHost,
		Port:     envConfig.SMTPPort,
		Username: envConfig.SMTPUsername,
		Password: envConfig.SMTPPassword,
		From:     envConfig.SMTPFrom,
		FromName: envConfig.SMTPFromName,
		Timeout:  envConfig.ReminderSendTimeout,
	})
	if err != nil {
		return fmt.Errorf("notify.NewMailer: %w", err)
	}
	if !mailer.Initialized() {
		logger.Warn("SMTP not configured; reminders will be counted as errors until it is")
	}

	policy := billing.DefaultPolicy()
	gateway := billing.NewStripeGateway(
		envConfig.StripeSecretKey,
		envConfig.StripeWebhookSecret,
		envConfig.StripePriceID,
		envConfig.AppBaseURL,
	)
	tokens := auth.NewTokenIssuer(envConfig.JWTSecret, envConfig.JWTTTL)

	scanner := reminder.NewScanner(reminder.Config{
		Transactions: dbStorage.Reader.Transactions,
		Users:        dbStorage.Reader.Users,
		Ledger:       dbStorage.Deliveries,
		Sender:       mailer,
		Policy:       policy,
		Logger:       logger,
		WindowDays:   envConfig.ReminderWindowDays,
		SendTimeout:  envConfig.ReminderSendTimeout,
		Location:     envConfig.Location,
		FromName:     envConfig.SMTPFromName,
	})
	scheduler := reminder.NewScheduler(scanner, envConfig.ReminderSchedule, envConfig.Location, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("scheduler.Start: %w", err)
	}

	billingService := service.NewBillingService(dbStorage.Reader.Users, delegator, gateway, policy, logger)
	svc := &service.Service{
		Transactions: service.NewTransactionService(dbStorage.Reader.Transactions, delegator),
		Users:        service.NewUserService(dbStorage.Reader.Users, delegator, tokens, billingService),
		Billing:      billingService,
		Reminders:    service.NewReminderService(scanner, scheduler),
	}

	httpRest := api.Rest{
		Logger:    logger,
		Port:      envConfig.HTTPPort,
		Storage:   dbStorage,
		Service:   svc,
		Tokens:    tokens,
		Policy:    policy,
		Scheduler: scheduler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpRest.Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		// Wait for an in-flight scan before the operator and database go away.
		<-scheduler.Stop().Done()
		return nil
	})

	return g.Wait()
}
