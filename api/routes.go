package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/carson-networks/deadline-server/internal/auth"
	"github.com/carson-networks/deadline-server/internal/billing"
	"github.com/carson-networks/deadline-server/internal/handlers/v1/account"
	billinghandlers "github.com/carson-networks/deadline-server/internal/handlers/v1/billing"
	"github.com/carson-networks/deadline-server/internal/handlers/v1/reminder"
	"github.com/carson-networks/deadline-server/internal/handlers/v1/status"
	"github.com/carson-networks/deadline-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/deadline-server/internal/logging"
	"github.com/carson-networks/deadline-server/internal/service"
	"github.com/carson-networks/deadline-server/internal/storage"
)

type registrar interface {
	Register(api huma.API)
}

type Rest struct {
	Logger    *logrus.Logger
	Port      string
	Storage   *storage.Storage
	Service   *service.Service
	Tokens    *auth.TokenIssuer
	Policy    billing.Policy
	Scheduler interface{ Running() bool }
}

const shutdownTimeout = 10 * time.Second

// Routes builds the HTTP handler serving the huma API and the plain status endpoint.
func (r *Rest) Routes() http.Handler {
	router := mux.NewRouter()

	config := huma.DefaultConfig("Deadline Server", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		auth.SecurityScheme: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	api := humamux.New(router, config)

	authMiddleware := &auth.Middleware{
		API:    api,
		Tokens: r.Tokens,
		Users:  r.Storage.Reader.Users,
		Policy: r.Policy,
	}
	api.UseMiddleware(logging.HumaMiddleware(r.Logger), authMiddleware.Handle)

	for _, h := range []registrar{
		account.NewRegisterHandler(r.Service.Users),
		account.NewLoginHandler(r.Service.Users),
		account.NewMeHandler(r.Service.Users),

		transaction.NewCreateTransactionHandler(r.Service.Transactions),
		transaction.NewListTransactionsHandler(r.Service.Transactions),
		transaction.NewGetTransactionHandler(r.Service.Transactions),
		transaction.NewUpdateTransactionHandler(r.Service.Transactions),
		transaction.NewDeleteTransactionHandler(r.Service.Transactions),

		reminder.NewRunRemindersHandler(r.Service.Reminders),
		reminder.NewReminderStatusHandler(r.Service.Reminders),

		billinghandlers.NewGetSubscriptionHandler(r.Service.Billing),
		billinghandlers.NewExtendTrialHandler(r.Service.Billing),
		billinghandlers.NewCheckoutHandler(r.Service.Billing),
		billinghandlers.NewWebhookHandler(r.Service.Billing),
	} {
		h.Register(api)
	}

	statusHandler := status.NewHandler(r.Storage, r.Scheduler)
	router.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	return otelhttp.NewHandler(router, "deadline-server")
}

// Serve blocks until ctx is cancelled or the listener fails, then drains in-flight
// requests.
func (r *Rest) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Routes(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(shutdownCtx)
	}()

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
		return err
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
	return <-shutdownErr
}
