package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/config"
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/notify"
	"github.com/mmynk/groupledger/internal/notify/amqp"
	"github.com/mmynk/groupledger/internal/reminder"
	"github.com/mmynk/groupledger/internal/service"
	"github.com/mmynk/groupledger/internal/splitrequest"
	"github.com/mmynk/groupledger/internal/storage"
	"github.com/mmynk/groupledger/internal/storage/backend"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
	"github.com/mmynk/groupledger/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	l := ledger.New(store, ledger.WithMetrics(m))
	engine := splitrequest.New(store, splitrequest.WithMetrics(m))
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	notifier, closeNotifier, err := newNotifier(cfg)
	if err != nil {
		return err
	}
	defer closeNotifier()

	router := newRouter(store, l, engine, jwtManager, m, reg)
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
	})

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(loggingMiddleware(c.Handler(router)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	worker := reminder.New(engine, notifier, cfg.ReminderInterval, cfg.ReminderWindow, reminder.WithMetrics(m))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return worker.Run(gctx)
	})
	if cfg.ReconcileInterval > 0 {
		g.Go(func() error {
			slog.Info("Reconciler started", "interval", cfg.ReconcileInterval)
			return engine.RunReconciler(gctx, cfg.ReconcileInterval)
		})
	}

	return g.Wait()
}

// newNotifier returns the AMQP publisher when a broker is configured and a
// log-only notifier otherwise.
func newNotifier(cfg *config.Config) (notify.Notifier, func(), error) {
	if cfg.AMQPURL == "" {
		slog.Warn("AMQP_URL not set, reminders will only be logged")
		return notify.LogNotifier{}, func() {}, nil
	}

	publisher, err := amqp.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Publishing reminders to AMQP", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("Failed to close AMQP publisher", "error", err)
		}
	}, nil
}

// newRouter mounts the Connect services, metrics and health endpoints.
func newRouter(store storage.Store, l *ledger.Ledger, engine *splitrequest.Engine, jwtManager *auth.JWTManager, m *metrics.Metrics, gatherer prometheus.Gatherer) *mux.Router {
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager),
	)

	router := mux.NewRouter()

	// Register Connect services
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(service.NewGroupService(l), interceptors)
	router.PathPrefix(groupPath).Handler(groupHandler)

	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(service.NewLedgerService(l), interceptors)
	router.PathPrefix(ledgerPath).Handler(ledgerHandler)

	splitPath, splitHandler := apiconnect.NewSplitRequestServiceHandler(service.NewSplitRequestService(engine), interceptors)
	router.PathPrefix(splitPath).Handler(splitHandler)

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			slog.Warn("Health check failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return router
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
