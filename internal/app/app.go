package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-media/internal/broker"
	kafka_impl "storefront-media/internal/broker/kafka"
	"storefront-media/internal/config"
	upload_h "storefront-media/internal/http-server/handler/upload"
	"storefront-media/internal/http-server/router"
	minio_repo "storefront-media/internal/repository/artifact/cloud/minio"
	postgres_repo "storefront-media/internal/repository/artifact/db/postgres"
	fs_repo "storefront-media/internal/repository/artifact/fs"
	media_uc "storefront-media/internal/usecase/media"
	"storefront-media/internal/usecase/processor"
	"storefront-media/internal/usecase/processor/operations"

	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/zlog"
)

type App struct {
	cfg      *config.Config
	server   *http.Server
	logger   *zlog.Zerolog
	db       *dbpg.DB
	notifier broker.Notifier
}

type artifactStore interface {
	Ensure(ctx context.Context) error
	Save(ctx context.Context, filename string, data []byte, contentType string) error
	Get(ctx context.Context, filename string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, filename string) error
}

func NewApp(cfg *config.Config, logger *zlog.Zerolog) (*App, error) {
	retries := cfg.DefaultRetryStrategy()

	var fileRepo artifactStore
	switch cfg.Storage.Backend {
	case config.BackendMinIO:
		repo, err := minio_repo.NewMinIORepository(cfg, retries, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create file repository: %w", err)
		}
		fileRepo = repo
	default:
		repo := fs_repo.NewFileRepository(cfg.Storage.Dir)
		if err := repo.Ensure(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to prepare storage directory: %w", err)
		}
		fileRepo = repo
	}

	var procOpts []processor.Option
	if cfg.Upload.WatermarkText != "" {
		wm, err := operations.NewWatermarker(cfg.Upload.WatermarkText, cfg.Upload.WatermarkOpacity)
		if err != nil {
			return nil, fmt.Errorf("failed to create watermarker: %w", err)
		}
		procOpts = append(procOpts, processor.WithWatermarker(wm))
	}
	imageProcessor := processor.NewImageProcessor(fileRepo, logger, procOpts...)

	resolver := media_uc.NewURLResolver(cfg.Media.BaseURL, cfg.Media.PublicPrefix, cfg.Media.Placeholder)

	var (
		mediaOpts []media_uc.Option
		db        *dbpg.DB
		notifier  broker.Notifier = broker.NopNotifier{}
	)

	if cfg.CatalogEnabled() {
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

		catalog := postgres_repo.NewArtifactsRepository(db, retries)
		if err := catalog.Migrate(context.Background()); err != nil {
			db.Master.Close()
			return nil, err
		}
		mediaOpts = append(mediaOpts, media_uc.WithCatalog(catalog))
		logger.Info().Msg("Artifact catalog enabled")
	}

	if cfg.EventsEnabled() {
		notifier = kafka_impl.NewArtifactNotifier(cfg)
		logger.Info().
			Strs("brokers", cfg.Kafka.Brokers).
			Str("topic", cfg.Kafka.Topic).
			Msg("Artifact events enabled")
	}
	mediaOpts = append(mediaOpts, media_uc.WithNotifier(notifier))

	mediaUsecase := media_uc.NewMediaUsecase(imageProcessor, fileRepo, resolver, logger, mediaOpts...)

	uploadHandler := upload_h.NewUploadHandler(mediaUsecase, logger)

	h := &router.Handler{
		UploadHandler:  uploadHandler,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		PublicPrefix:   cfg.Media.PublicPrefix,
	}

	mux := router.SetupRouter(h)

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
		notifier: notifier,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info().
		Str("addr", a.cfg.Server.Addr).
		Str("storage", a.cfg.Storage.Backend).
		Msg("Starting server")

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
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info().Msg("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error().Err(err).Msg("Server shutdown failed")
		}

		a.close()

		a.logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

func (a *App) close() {
	if a.db != nil && a.db.Master != nil {
		a.db.Master.Close()
	}

	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close notifier")
		}
	}
}

func (a *App) handleSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	a.logger.Info().Str("signal", sig.String()).Msg("Received signal")
	cancel()
}
