package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/config"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/credential"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/database"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/delivery/httpd"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/events"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/gateway"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/health"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/history"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/middleware"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/repository"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/server"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/worker"
	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/workflow"
)

// запас поверх таймаута шлюза, чтобы ответ о таймауте успел уйти клиенту
const requestTimeoutSlack = 5 * time.Second

type App struct {
	config    *config.Config
	logger    zerolog.Logger
	server    *server.Server
	gateway   gateway.Gateway
	store     credential.Store
	pool      *worker.Pool
	poller    *health.Poller
	sessions  *workflow.Registry
	history   *history.Service
	publisher events.Publisher
	db        *sql.DB
}

func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	gw, store, err := NewGateway(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:    cfg,
		logger:    log,
		gateway:   gw,
		store:     store,
		publisher: events.NopPublisher{},
		pool: worker.NewPool(
			cfg.Workers.Count,
			cfg.Workers.QueueSize,
			cfg.Workers.SubmitTimeout,
			log.With().Str("component", "worker_pool").Logger(),
		),
	}

	var repo repository.OutcomeRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		repo = repository.NewOutcomeRepository(db, log)
		log.Info().Str("database", cfg.Database.Name).Msg("Outcome history enabled")
	}

	if cfg.RabbitMQ.Enabled {
		publisher, err := events.NewRabbitMQPublisher(events.RabbitMQConfig{
			URL:          cfg.RabbitMQ.URL,
			Exchange:     cfg.RabbitMQ.Exchange,
			ExchangeType: cfg.RabbitMQ.ExchangeType,
			Queue:        cfg.RabbitMQ.QueueName,
			BindingKey:   cfg.RabbitMQ.BindingKey,
		}, log)
		if err != nil {
			a.closeStorage()
			return nil, err
		}
		a.publisher = publisher
	}

	a.history = history.NewService(repo, a.publisher, a.pool, log.With().Str("component", "history").Logger())
	a.sessions = workflow.NewRegistry(gw, store, log,
		workflow.WithObserver(a.history),
		workflow.WithCheckDefaults(cfg.Check.SimilarityThreshold, cfg.Check.MaxResults),
	)
	a.poller = health.NewPoller(gw, cfg.Health.Interval, log.With().Str("component", "health").Logger())

	h := httpd.NewHandler(a.sessions, gw, a.poller, a.history, store, a.pool, log)

	a.server = server.New(cfg.Server, h, log,
		middleware.NewCORS(
			cfg.CORS.AllowedOrigins,
			cfg.CORS.AllowedMethods,
			cfg.CORS.AllowedHeaders,
			cfg.CORS.ExposedHeaders,
			cfg.CORS.AllowCredentials,
			cfg.CORS.MaxAge,
		),
		middleware.Timeout(cfg.API.Timeout+requestTimeoutSlack),
		middleware.RequestLogger(log),
		middleware.Recovery(log),
	)

	return a, nil
}

// NewGateway шлюз и хранилище ключа; нужен и серверу, и командам CLI
func NewGateway(cfg *config.Config, log zerolog.Logger) (gateway.Gateway, credential.Store, error) {
	store, err := NewCredentialStore(cfg.Credential)
	if err != nil {
		return nil, nil, err
	}

	gw := gateway.NewClient(
		cfg.API.BaseURL,
		cfg.API.Timeout,
		log.With().Str("component", "gateway").Logger(),
		gateway.WithCredentialStore(store),
	)
	return gw, store, nil
}

func NewCredentialStore(cfg config.CredentialConfig) (credential.Store, error) {
	if cfg.Backend == "memory" {
		return credential.NewMemoryStore(""), nil
	}

	path := cfg.Path
	if path == "" {
		path = credential.DefaultPath()
	}

	store, err := credential.NewFileStore(path, cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	return store, nil
}

// Start фоновые части: пул воркеров, опрос здоровья и очистка сессий
func (a *App) Start(ctx context.Context) {
	a.pool.Start(ctx)
	if a.config.Health.Enabled {
		a.poller.Start(ctx)
	}
	if a.config.Sessions.IdleTTL > 0 {
		go a.sessions.RunSweeper(ctx, a.config.Sessions.SweepInterval, a.config.Sessions.IdleTTL)
	}
}

func (a *App) Run() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)

	a.sessions.CloseAll()
	a.poller.Stop()
	a.pool.Stop()
	a.closeStorage()

	return err
}

func (a *App) closeStorage() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to close publisher")
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database")
		}
	}
}
