package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	kafka_impl "panorama-ingest/internal/broker/kafka"
	"panorama-ingest/internal/config"
	"panorama-ingest/internal/extractor"
	panorama_h "panorama-ingest/internal/http-server/handler/panorama"
	"panorama-ingest/internal/http-server/router"
	"panorama-ingest/internal/pipeline"
	postgres_repo "panorama-ingest/internal/repository/panorama/db/postgres"
	"panorama-ingest/internal/scanner"
	"panorama-ingest/internal/storage"
	inline_sink "panorama-ingest/internal/storage/inline"
	minio_sink "panorama-ingest/internal/storage/minio"
	"panorama-ingest/internal/usecase/ingest"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	producer *kafka_impl.ProducerClient
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	// The storage credential is the sole switch between persistent URLs
	// and the inline data-URI fallback. The choice is made once, here.
	var sink storage.Sink
	if cfg.StorageEnabled() {
		minioSink, err := minio_sink.NewPanoramaSink(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage sink: %w", err)
		}
		sink = minioSink
		logger.Info().Str("bucket", cfg.Minio.Bucket).Msg("Using persistent storage sink")
	} else {
		sink = inline_sink.New()
		logger.Warn().Msg("No storage credential configured, falling back to inline data URIs")
	}

	var db *dbpg.DB
	var repo *postgres_repo.PanoramasRepository
	if cfg.DBEnabled() {
		dbOpts := &dbpg.Options{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		}

		var err error
		db, err = dbpg.New(cfg.DBDSN(), []string{}, dbOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo = postgres_repo.NewPanoramasRepository(db, retries)
	}

	var producer *kafka_impl.ProducerClient
	if cfg.KafkaEnabled() {
		producer = kafka_impl.NewProducerClient(cfg, retries)
	}

	ext := extractor.New(scanner.New(cfg.Extract.MinSegmentBytes), cfg.Extract.MinSourceBytes, logger)

	orchestrator := ingest.NewOrchestrator(ext, pipeline.New(logger), sink, cfg.Upload.MaxSize, logger)
	if repo != nil {
		orchestrator.WithHistory(repo)
	}
	if producer != nil {
		orchestrator.WithProducer(producer)
	}

	panoramaHandler := panorama_h.NewPanoramaHandler(orchestrator, cfg.Upload.MaxSize, logger)

	mux := router.SetupRouter(&router.Handler{
		PanoramaHandler: panoramaHandler,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		cfg:      cfg,
		server:   server,
		logger:   logger,
		db:       db,
		producer: producer,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().Str("addr", a.cfg.Server.Addr).Msg("Starting server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.handleSignals(cancel)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.logger.Error().Err(err).Msg("Server error")
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		if a.db != nil && a.db.Master != nil {
			a.db.Master.Close()
		}

		if a.producer != nil {
			a.producer.Close()
		}

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
