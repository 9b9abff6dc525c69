package main

import (
	"context"
	"fmt"
	"strings"

	"sole-ledger/internal/app"
	"sole-ledger/internal/jobs/inmemory"
	"sole-ledger/internal/repository"
	"sole-ledger/pkg/auth"
	"sole-ledger/pkg/config"
	"sole-ledger/pkg/logger"
	"sole-ledger/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Globals are flags shared by every command. Connection settings come from
// the same environment as the server.
type Globals struct {
	LogLevel string `name:"log-level" default:"warn" help:"Log level (debug, info, warn, error)."`
}

func (g *Globals) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(g.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

// session is an open connection with the service graph built on top.
// Reminders scheduled by a session are stored but not dispatched here; the
// server's sweep picks them up.
type session struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *pgxpool.Pool
	queue    *inmemory.Queue
	services *app.Services
}

func (g *Globals) open(ctx context.Context) (*session, error) {
	cfg, log, err := g.load()
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewPool(ctx, &cfg.Database, log)
	if err != nil {
		return nil, err
	}

	jobStore := inmemory.NewStore(cfg.Reminders.JobRetention)
	queue := inmemory.NewQueue(inmemory.Options{Logger: log}, jobStore)
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)
	services, err := app.NewServices(db, cfg, jwtManager, queue, jobStore, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &session{cfg: cfg, logger: log, db: db, queue: queue, services: services}, nil
}

func (s *session) Close() {
	_ = s.queue.Close()
	s.db.Close()
	_ = s.logger.Sync()
}

// userID resolves the acting user by email.
func (s *session) userID(ctx context.Context, email string) (uuid.UUID, error) {
	users := repository.NewUserRepository(s.db, s.logger)
	user, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return uuid.Nil, fmt.Errorf("find user %q: %w", email, err)
	}
	return user.ID, nil
}
