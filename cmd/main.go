package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apicontext "github.com/pwledger/server/internal/api/http/context"
	"github.com/pwledger/server/internal/api/http/router"
	httpServer "github.com/pwledger/server/internal/api/http/server"
	"github.com/pwledger/server/internal/config"
	"github.com/pwledger/server/internal/logger"
	"github.com/pwledger/server/internal/metrics"
	"github.com/pwledger/server/internal/model"
	"github.com/pwledger/server/internal/repository/postgres"
	"github.com/pwledger/server/internal/server"
	"github.com/pwledger/server/internal/service"
	storage "github.com/pwledger/server/internal/storage/minio"
	"github.com/pwledger/server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	accountRepo := postgres.NewAccountRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	refreshTokenRepo := postgres.NewRefreshTokenRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	m := metrics.New(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	tokenService := service.NewTokenService(tokenManager, refreshTokenRepo, logger)
	authService := service.NewAuth(userRepo, settingsRepo, tokenService, logger)
	ledger := service.NewLedger(accountRepo, settingsRepo, m, logger)
	notifier := service.NewLogNotifier(logger)
	sweep := service.NewSweep(accountRepo, settingsRepo, userRepo, notifier, m, logger, cfg.Sweep.Interval)
	importer := service.NewImporter(ledger, storageClient, m, logger)
	ctxMgr := apicontext.NewManager()

	r := router.New(authService, ledger, sweep, importer, tokenService, ctxMgr, m, metricsHandler, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	wg.Add(1)
	go func() {
		defer wg.Done()
		sweep.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
