package profileprovisioner

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/profile-provisioner/internal/config"
	"github.com/magabrotheeeer/profile-provisioner/internal/docstore"
	"github.com/magabrotheeeer/profile-provisioner/internal/event"
	"github.com/magabrotheeeer/profile-provisioner/internal/migrations"
	provisionservice "github.com/magabrotheeeer/profile-provisioner/internal/services/provision"
	"github.com/magabrotheeeer/profile-provisioner/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	storeClient := docstore.NewClient(cfg.DocumentStore)
	decoder := event.New()
	provisionService := provisionservice.New(storeClient, db, cfg.DocumentStore, cfg.ProfileDefaults, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, decoder, provisionService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
