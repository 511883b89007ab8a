package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"

	"github.com/bryanwahyu/fraudshield/internal/application"
	"github.com/bryanwahyu/fraudshield/internal/application/analysis"
	appchat "github.com/bryanwahyu/fraudshield/internal/application/chat"
	appsettings "github.com/bryanwahyu/fraudshield/internal/application/settings"
	"github.com/bryanwahyu/fraudshield/internal/config"
	"github.com/bryanwahyu/fraudshield/internal/domain/chat"
	"github.com/bryanwahyu/fraudshield/internal/domain/failures"
	"github.com/bryanwahyu/fraudshield/internal/domain/fraud"
	"github.com/bryanwahyu/fraudshield/internal/domain/history"
	"github.com/bryanwahyu/fraudshield/internal/domain/settings"
	"github.com/bryanwahyu/fraudshield/internal/infra/ai/gemini"
	"github.com/bryanwahyu/fraudshield/internal/infra/ai/openai"
	"github.com/bryanwahyu/fraudshield/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/fraudshield/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/fraudshield/internal/infra/db/postgres"
	"github.com/bryanwahyu/fraudshield/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/fraudshield/internal/infra/storage"
	"github.com/bryanwahyu/fraudshield/internal/metrics"
	"github.com/bryanwahyu/fraudshield/internal/middleware"
)

type stores struct {
	db         *sql.DB
	history    history.Repository
	failures   failures.Repository
	thresholds settings.ThresholdStore
}

type aiBackend interface {
	fraud.Generator
	chat.Provider
}

func main() {
	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.WithError(err).Fatal("config load error")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	ctx := context.Background()
	metrics.Register()

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Database.Driver).Fatal("database connect error")
	}
	if st.db != nil {
		defer st.db.Close()
	}

	ai, err := newAI(ctx, cfg)
	if err != nil {
		log.WithError(err).WithField("provider", cfg.AI.Provider).Fatal("ai client init error")
	}

	svc := &analysis.Service{
		Generator: ai,
		History:   st.history,
		Failures:  st.failures,
		Clock:     application.SystemClock{},
		Timeout:   cfg.AI.Timeout,
	}

	checkers := map[string]middleware.HealthChecker{}
	if st.db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: st.db}
	}

	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.WithError(err).Fatal("minio init error")
		}
		svc.Artifacts = store
		checkers["storage"] = middleware.CheckFunc(store.Ping)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	stopSweep := make(chan struct{})
	go limiter.Run(stopSweep)

	handler := httpserver.NewRouter(httpserver.Deps{
		Analysis:       svc,
		Settings:       &appsettings.Service{Store: st.thresholds, Defaults: cfg.Thresholds},
		Chat:           &appchat.Relay{Provider: ai, Clock: application.SystemClock{}},
		Sessions:       httpserver.NewSessionRegistry(cfg.Chat.MaxSessions, cfg.Chat.SessionTTL),
		Checkers:       checkers,
		APIKeys:        cfg.Auth.APIKeys,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(log.Fields{
			"addr":     addr,
			"provider": cfg.AI.Provider,
			"model":    cfg.AI.Model,
			"driver":   cfg.Database.Driver,
		}).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server...")
	close(stopSweep)

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.WithError(err).Error("shutdown error")
	}
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return stores{}, err
		}
		if cfg.Database.Migrate {
			if err := mysqlp.Migrate(ctx, db); err != nil {
				db.Close()
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return stores{
			db:         db,
			history:    mysqlp.NewHistoryRepository(db),
			failures:   mysqlp.NewFailureRepository(db),
			thresholds: mysqlp.NewThresholdRepository(db),
		}, nil
	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return stores{}, err
		}
		if cfg.Database.Migrate {
			if err := pgp.Migrate(ctx, db); err != nil {
				db.Close()
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
		}
		return stores{
			db:         db,
			history:    pgp.NewHistoryRepository(db),
			failures:   pgp.NewFailureRepository(db),
			thresholds: pgp.NewThresholdRepository(db),
		}, nil
	default:
		return stores{
			history:    memory.NewHistoryRepository(),
			failures:   memory.NewFailureRepository(),
			thresholds: memory.NewThresholdRepository(),
		}, nil
	}
}

func newAI(ctx context.Context, cfg *config.Config) (aiBackend, error) {
	if cfg.AI.Provider == config.ProviderOpenAI {
		return openai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.ChatModel), nil
	}
	return gemini.New(ctx, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.ChatModel)
}
