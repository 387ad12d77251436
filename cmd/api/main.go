package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/mirrorlake/unify/config"
	"github.com/mirrorlake/unify/internal/repositories/account"
	"github.com/mirrorlake/unify/internal/repositories/contact"
	"github.com/mirrorlake/unify/internal/repositories/matchgroup"
	"github.com/mirrorlake/unify/internal/repositories/resolutionrun"
	"github.com/mirrorlake/unify/internal/repositories/segmentrule"
	"github.com/mirrorlake/unify/pkg/database"
	"github.com/mirrorlake/unify/pkg/events"
	"github.com/mirrorlake/unify/pkg/graph"
	"github.com/mirrorlake/unify/pkg/kafka"
	"github.com/mirrorlake/unify/pkg/middleware"
	"github.com/mirrorlake/unify/pkg/report"
	"github.com/mirrorlake/unify/pkg/routes/health"
	"github.com/mirrorlake/unify/pkg/routes/resolution"
	segmentrulehandler "github.com/mirrorlake/unify/pkg/routes/segmentrule"
	"github.com/mirrorlake/unify/pkg/service"
	"github.com/mirrorlake/unify/pkg/tracing"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		panic(fmt.Errorf("failed to bind config: %w", err))
	}

	logger := newLogger(cfg)

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracing.SetTracer(tp.Tracer(cfg.AppName))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}()

	db, err := connectDatabase(cfg)
	if err != nil {
		fatal(logger, err, "Failed to connect to database")
	}
	defer db.Close()

	if err := runMigrations(cfg, logger, db); err != nil {
		fatal(logger, err, "Failed to run migrations")
	}

	dbInstance := database.NewDatabaseInstance(db, logger)

	contactRepo := contact.NewRepository(dbInstance, logger)
	accountRepo := account.NewRepository(dbInstance, logger)
	groupRepo := matchgroup.NewRepository(dbInstance, logger)
	runRepo := resolutionrun.NewRepository(dbInstance, logger)
	ruleRepo := segmentrule.NewRepository(dbInstance, logger)
	reportWriter := report.NewWriter(logger, cfg.ReportOutputDir)

	var emitter *events.Emitter
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		emitter = events.NewEmitter(producer, logger)
	}

	var lineage *graph.Lineage
	if cfg.GraphDBEnabled {
		client, err := graph.NewClient(graph.Config{
			Host:     cfg.GraphDBHost,
			Port:     cfg.GraphDBPort,
			Username: cfg.GraphDBUser,
			Password: cfg.GraphDBPassword,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("Graph database unavailable, lineage disabled")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Close(ctx)
			}()
			lineage = graph.NewLineage(client, logger)
		}
	}

	svc := service.NewService(
		logger,
		contactRepo,
		accountRepo,
		groupRepo,
		runRepo,
		ruleRepo,
		reportWriter,
		emitter,
		lineage,
		service.Config{
			ContactScoringStrategy: cfg.ContactScoringStrategy,
			Workers:                cfg.ResolverWorkerCount,
			BlockingEnabled:        cfg.BlockingEnabled,
		},
	)

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		fatal(logger, err, "Failed to create DI container")
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		fatal(logger, err, "Failed to register logger")
	}
	if err := ectoinject.RegisterInstance[*service.Service](container, svc); err != nil {
		fatal(logger, err, "Failed to register service")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	checker := health.NewChecker(db, version)
	checker.RegisterRoutes(e)
	resolution.Register(e.Group("/api/v1/resolution"))
	segmentrulehandler.Register(e.Group("/api/v1/segment-rules"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		logger.WithField("port", cfg.Port).Infof("Starting %s on port %d", cfg.AppName, cfg.Port)
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			fatal(logger, err, "Server stopped unexpectedly")
		}
	}()
	checker.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	checker.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Failed to shut down cleanly")
	}
}

func fatal(logger ectologger.Logger, err error, msg string) {
	logger.WithError(err).Error(msg)
	os.Exit(1)
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		panic(fmt.Errorf("failed to create logger: %w", err))
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func connectDatabase(cfg config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName,
		cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode,
	)

	db, err := sqlx.Connect(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	db.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	return db, nil
}

func runMigrations(cfg config.Config, logger ectologger.Logger, db *sqlx.DB) error {
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	ms := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
		AutoRollback:        cfg.DatabaseMigrationAutoRollback,
	})
	return ms.Migrate(cfg.DatabaseName, driver)
}
