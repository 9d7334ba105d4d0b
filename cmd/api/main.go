package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-sync-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta"
	"github.com/vfg2006/ads-sync-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/ads-sync-api/infrastructure/integrator/ratelimit"
	"github.com/vfg2006/ads-sync-api/infrastructure/repository"
	"github.com/vfg2006/ads-sync-api/internal/api"
	"github.com/vfg2006/ads-sync-api/internal/config"
	"github.com/vfg2006/ads-sync-api/internal/scheduler"
	"github.com/vfg2006/ads-sync-api/internal/usecases/authenticating"
	"github.com/vfg2006/ads-sync-api/internal/usecases/syncing"
	"github.com/vfg2006/ads-sync-api/pkg/log"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Formato e nível definitivos dependem do APP_ENV e da configuração carregada
	log.Setup(cfg.App.LogLevel)
	logrus.Infof("Nível de log configurado para: %s", logrus.GetLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	entityRepo := repository.NewEntityRepository(pgConn)
	analyticsRepo := repository.NewAnalyticsRepository(pgConn)
	syncConfigRepo := repository.NewSyncConfigurationRepository(pgConn)
	externalAccountRepo := repository.NewExternalAccountRepository(pgConn)
	credentialRepo := repository.NewCredentialRepository(pgConn)

	authenticator := authenticating.NewService(cfg)

	// Um único limiter por plataforma, compartilhado por todas as organizações e contas
	metaLimiter := ratelimit.New(metaclient.Platform, cfg.Meta.MaxConcurrentCalls, cfg.Meta.MinCallInterval)
	metaClient := metaclient.NewClient(cfg, metaLimiter)

	tokenManager := metaclient.NewTokenManager(cfg, credentialRepo, metaClient)
	go tokenManager.StartAutoRefresh(ctx)
	defer tokenManager.StopAutoRefresh()

	metaIntegrator := meta.New(metaClient)

	pipeline := syncing.NewPipeline(cfg, metaIntegrator, tokenManager, entityRepo, analyticsRepo)
	reconciler := syncing.NewReconciler(metaIntegrator, tokenManager, entityRepo)

	syncScheduler := scheduler.NewSyncScheduler(cfg, syncConfigRepo, externalAccountRepo, pipeline, reconciler)

	// Inicia o agendador em background
	if err := syncScheduler.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização")
	} else {
		logrus.Info("Agendador de sincronização iniciado com sucesso")
	}
	defer syncScheduler.Stop()

	server, err := api.New(cfg, authenticator, syncScheduler, pgConn)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
