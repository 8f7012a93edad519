package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/distinctmentorship/payments/internal/api"
	apierrors "github.com/distinctmentorship/payments/internal/errors"
	v1 "github.com/distinctmentorship/payments/internal/api/v1"
	"github.com/distinctmentorship/payments/internal/api/validator"
	"github.com/distinctmentorship/payments/internal/cache"
	"github.com/distinctmentorship/payments/internal/config"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/model"
	"github.com/distinctmentorship/payments/internal/provider"
	"github.com/distinctmentorship/payments/internal/publishers"
	"github.com/distinctmentorship/payments/internal/repository"
	"github.com/distinctmentorship/payments/internal/service"
	"github.com/distinctmentorship/payments/pkg/httpclient"
	"github.com/distinctmentorship/payments/pkg/mpesa"
	"github.com/distinctmentorship/payments/pkg/mq"
	"github.com/distinctmentorship/payments/pkg/mysql"
	"github.com/distinctmentorship/payments/pkg/paystack"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,
			NewFiberApp,
			NewValidator,
			NewConnectionDB,
			NewMQConnection,
			NewMQPublisher,

			repository.NewTransactionRepository,
			NewConfirmationCache,
			NewMpesaClient,
			NewPaystackClient,
			NewGatewayRegistry,
			publishers.NewConfirmationPublisher,

			NewChargeService,
			service.NewReconcileService,
			NewIngestService,
			NewPoller,

			v1.NewHandler,
		),
		fx.Invoke(migrate, startServer, startMetricsServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, rabbit *mq.RabbitMQ,
	m *metrics.Metrics, logger *zap.Logger, lc fx.Lifecycle,
) {
	app.Use(metrics.HTTPMetricsMiddleware(m, logger))
	api.SetupRoutes(app, handler)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rabbit.DeclareTopology([]string{publishers.ConfirmedQueue}); err != nil {
				logger.Error("declare topology failed", zap.Error(err))
				return err
			}

			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := app.ShutdownWithContext(ctx); err != nil {
				return err
			}
			return rabbit.Close()
		},
	})
}

func startMetricsServer(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Metrics.Port, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("metrics server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Transaction{})
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: apierrors.ErrorHandler()})
}

func NewValidator(m *metrics.Metrics) validator.IXValidator {
	return validator.NewXValidator(playground.New(), m)
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMQConnection(cfg *config.Config, logger *zap.Logger) (*mq.RabbitMQ, error) {
	return mq.NewConnection(cfg.MQ, logger)
}

func NewMQPublisher(rabbit *mq.RabbitMQ) (mq.Publisher, error) {
	return rabbit.CreatePublisher()
}

func NewConfirmationCache(cfg *config.Config) cache.ConfirmationCache {
	return cache.NewConfirmationCache(cfg.Cache.TTL)
}

func NewMpesaClient(cfg *config.Config, logger *zap.Logger) mpesa.Client {
	client := httpclient.NewHTTPClient(cfg.Mpesa.Timeout)
	return mpesa.NewClient(cfg.Mpesa, client, logger)
}

func NewPaystackClient(cfg *config.Config, logger *zap.Logger) paystack.Client {
	client := httpclient.NewHTTPClient(cfg.Paystack.Timeout)
	return paystack.NewClient(cfg.Paystack, client, logger)
}

func NewGatewayRegistry(mpesaClient mpesa.Client, paystackClient paystack.Client, logger *zap.Logger) *provider.Registry {
	return provider.NewRegistry(
		provider.NewMpesaGateway(mpesaClient, logger),
		provider.NewPaystackGateway(paystackClient, logger),
	)
}

func NewChargeService(cfg *config.Config, registry *provider.Registry,
	transactionRepo repository.TransactionRepository, logger *zap.Logger, m *metrics.Metrics,
) service.ChargeService {
	return service.NewChargeService(registry, model.Provider(cfg.Payments.DefaultProvider), transactionRepo, logger, m)
}

func NewIngestService(cfg *config.Config, transactionRepo repository.TransactionRepository,
	confirmations cache.ConfirmationCache, publisher service.ConfirmationPublisher,
	logger *zap.Logger, m *metrics.Metrics,
) service.IngestService {
	return service.NewIngestService(transactionRepo, confirmations, publisher, cfg.Paystack.SecretKey, logger, m)
}

func NewPoller(cfg *config.Config, resolver service.Resolver, logger *zap.Logger, m *metrics.Metrics) service.Poller {
	return service.NewPoller(resolver, cfg.Poller, logger, m)
}
