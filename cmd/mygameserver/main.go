package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/VladKvetkin/mygameserver/internal/config"
	"github.com/VladKvetkin/mygameserver/internal/logger"
	"github.com/VladKvetkin/mygameserver/internal/notifier"
	"github.com/VladKvetkin/mygameserver/internal/payment"
	"github.com/VladKvetkin/mygameserver/internal/server"
	"github.com/VladKvetkin/mygameserver/internal/storage"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(start())
}

func start() int {
	config, err := config.NewConfig(os.Args[1:])
	if err != nil {
		zap.L().Error("error create config", zap.Error(err))
		return 1
	}

	if err := logger.Initialize(config.LogLevel, config.Server.Debug); err != nil {
		zap.L().Error("error initialize logger", zap.Error(err))
		return 1
	}

	defer zap.L().Sync()

	db, err := sqlx.Connect("postgres", config.DSN())
	if err != nil {
		zap.L().Error("error failed to connect to db", zap.Error(err))
		return 1
	}

	defer db.Close()

	db.SetMaxOpenConns(config.DB.MaxConns)
	db.SetMaxIdleConns(config.DB.MinConns)

	postgresStorage, err := storage.NewPostgresStorage(db, config.DB.QueryTimeout)
	if err != nil {
		zap.L().Error("error failed to create postgres storage", zap.Error(err))
		return 1
	}

	var (
		notifier = notifier.NewNotifier(config.NotifyURL)
		manager  = payment.NewManager(postgresStorage, config.Server.PublicURL, notifier)
		server   = server.NewServer(config, postgresStorage, manager)
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := server.Start(); err != nil {
			zap.L().Error("error starting server", zap.Error(err))
			return err
		}

		return nil
	})

	eg.Go(func() error {
		if err := notifier.Start(ctx); err != nil {
			zap.L().Error("error starting notifier", zap.Error(err))
			return err
		}

		return nil
	})

	<-ctx.Done()

	eg.Go(func() error {
		if err := server.Stop(); err != nil {
			zap.L().Error("error stopping server", zap.Error(err))
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return 1
	}

	return 0
}
