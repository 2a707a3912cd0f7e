package main

import (
	"context"
	"fmt"

	"github.com/gotodo/todo-service/internal/config"
	"github.com/gotodo/todo-service/internal/database"
	itemrepo "github.com/gotodo/todo-service/internal/items/repository"
	"github.com/gotodo/todo-service/internal/users"
	"github.com/gotodo/todo-service/pkg/logger"
)

const mongoConnectAttempts = 5

// stores bundles the repositories for the configured backend.
type stores struct {
	accounts users.AccountRepository
	items    itemrepo.Repository
	ping     func(ctx context.Context) error
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDB.Database)
		accounts, err := users.NewMongoAccountRepository(ctx, db.Collection("users"))
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		items, err := itemrepo.NewMongoRepo(ctx, db.Collection("todos"))
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Infof("Connected to MongoDB database %q", cfg.MongoDB.Database)
		return &stores{
			accounts: accounts,
			items:    items,
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:    func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case config.StorePostgres:
		db, err := database.ConnectPostgres(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		accounts, err := users.NewGormAccountRepository(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		items, err := itemrepo.NewGormRepo(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Infof("Connected to Postgres")
		return &stores{
			accounts: accounts,
			items:    items,
			ping:     sqlDB.PingContext,
			close:    func() { _ = sqlDB.Close() },
		}, nil

	case config.StoreMemory:
		logger.Warnf("using in-memory store; data is lost on restart")
		return &stores{
			accounts: users.NewMemoryAccountRepository(),
			items:    itemrepo.NewMemoryRepo(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
