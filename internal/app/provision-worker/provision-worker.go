// Package provisionworker содержит приложение воркера, потребляющего события
// о создании пользователей из очереди и выполняющего провижининг профилей.
package provisionworker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/profile-provisioner/internal/cache"
	"github.com/magabrotheeeer/profile-provisioner/internal/config"
	"github.com/magabrotheeeer/profile-provisioner/internal/docstore"
	"github.com/magabrotheeeer/profile-provisioner/internal/event"
	"github.com/magabrotheeeer/profile-provisioner/internal/lib/sl"
	"github.com/magabrotheeeer/profile-provisioner/internal/migrations"
	"github.com/magabrotheeeer/profile-provisioner/internal/rabbitmq"
	provisionservice "github.com/magabrotheeeer/profile-provisioner/internal/services/provision"
	"github.com/magabrotheeeer/profile-provisioner/internal/storage/repository"
)

// markerTTL время жизни маркера однократной обработки события.
const markerTTL = 24 * time.Hour

// App представляет приложение воркера провижининга.
type App struct {
	decoder          *event.Decoder
	provisionService *provisionservice.Service
	cache            *cache.Cache
	conn             *amqp.Connection
	ch               *amqp.Channel
	db               *repository.Storage
	logger           *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения воркера.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetIdentityQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err := migrations.Run(db.DB, "./migrations"); err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	storeClient := docstore.NewClient(cfg.DocumentStore)
	provisionService := provisionservice.New(storeClient, db, cfg.DocumentStore, cfg.ProfileDefaults, logger)

	return &App{
		decoder:          event.New(),
		provisionService: provisionService,
		cache:            cacheRedis,
		conn:             conn,
		ch:               ch,
		db:               db,
		logger:           logger,
	}, nil
}

// Run запускает потребление очереди событий и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	if err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.UserCreatedQueue, a.handleMessage); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	a.logger.Info("provision worker started", slog.String("queue", rabbitmq.UserCreatedQueue))

	<-ctx.Done()
	a.Close()
	return nil
}

// handleMessage обрабатывает одно событие из очереди. Неразбираемые события
// подтверждаются и отбрасываются, чтобы не зациклить доставку. При ошибке
// провижининга маркер снимается и событие возвращается в очередь.
func (a *App) handleMessage(body []byte) error {
	identity, err := a.decoder.Decode(body)
	if err != nil {
		a.logger.Error("failed to decode user created event, dropping", sl.Err(err))
		return nil
	}

	markerKey := fmt.Sprintf("provision:user:%s", identity.ID)
	acquired, err := a.cache.MarkProcessed(markerKey, markerTTL)
	if err != nil {
		return err
	}
	if !acquired {
		a.logger.Info("event already processed, skipping", slog.String("user_uid", identity.ID))
		return nil
	}

	documentID, err := a.provisionService.Provision(context.Background(), *identity)
	if err != nil {
		a.logger.Error("failed to provision profile", slog.String("user_uid", identity.ID), sl.Err(err))
		if releaseErr := a.cache.Release(markerKey); releaseErr != nil {
			a.logger.Warn("failed to release processing marker",
				slog.String("key", markerKey), sl.Err(releaseErr))
		}
		return err
	}

	a.logger.Info("success to provision profile",
		slog.String("user_uid", identity.ID),
		slog.String("document_id", documentID))
	return nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	closeResources(a.ch, a.conn, a.logger)
	if a.db != nil {
		_ = a.db.DB.Close()
	}
	if a.cache != nil {
		_ = a.cache.Db.Close()
	}
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}
