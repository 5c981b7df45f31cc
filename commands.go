package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HKazz/project-3-back-end/config"
	"github.com/HKazz/project-3-back-end/handlers"
	"github.com/HKazz/project-3-back-end/logging"
	"github.com/HKazz/project-3-back-end/repositories"
	"github.com/HKazz/project-3-back-end/services"
)

const (
	storeMongo  = "mongo"
	storeMemory = "memory"
)

func newServeCmd(cfg *config.Config) *cobra.Command {
	var storeKind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, cfg, storeKind)
			if err != nil {
				logging.Logger.Fatalf("Event ID: DB_INIT_FAILED, Description: %v", err)
			}
			defer closeStore()

			notifications, closeNotifications, err := openNotifications(ctx, cfg)
			if err != nil {
				logging.Logger.Fatalf("Event ID: NOTIFICATION_STORE_INIT_FAILED, Description: %v", err)
			}
			defer closeNotifications()

			return serve(ctx, cfg, store, notifications)
		},
	}

	cmd.Flags().StringVar(&storeKind, "store", storeMongo, "Document store backend: mongo or memory")
	return cmd
}

func newEnsureIndexesCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client, err := repositories.ConnectMongo(ctx, cfg.MongoURI)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			if err := repositories.NewMongoStore(client, cfg.MongoDBName).EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
			return nil
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config, kind string) (repositories.Store, func(), error) {
	switch kind {
	case storeMemory:
		logging.Logger.Warn("Event ID: MEMORY_STORE, Description: using the in-memory store, data is lost on exit")
		return repositories.NewMemoryStore(), func() {}, nil
	case storeMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := repositories.ConnectMongo(connectCtx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		store := repositories.NewMongoStore(client, cfg.MongoDBName)
		if err := store.EnsureIndexes(connectCtx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return store, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logging.Logger.Errorf("Event ID: DB_DISCONNECT_FAILED, Description: %v", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", kind)
}

func openNotifications(ctx context.Context, cfg *config.Config) (repositories.NotificationRepository, func(), error) {
	if cfg.CassandraHosts == "" {
		logging.Logger.Info("Event ID: NOTIFICATIONS_IN_MEMORY, Description: CASS_DB not set, keeping notifications in memory")
		return repositories.NewMemoryNotificationRepository(), func() {}, nil
	}

	repo, err := repositories.NewCassandraNotificationRepository(cfg.CassandraHosts, cfg.CassandraKeyspace)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.CreateTable(ctx); err != nil {
		repo.Close()
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

func serve(ctx context.Context, cfg *config.Config, store repositories.Store, notifications repositories.NotificationRepository) error {
	notifier := services.NewNotificationService(notifications)
	projects := services.NewProjectService(store, notifier, cfg.ProjectDeletePolicy)
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:          services.NewAuthService(store.Users(), services.NewJWTService(cfg.JWTSecret, cfg.TokenTTL), cfg.BcryptCost),
		Projects:      projects,
		Tasks:         services.NewTaskService(store, projects, notifier, cfg.TaskDeletePolicy),
		Notifications: notifier,
		CORSOrigin:    cfg.CORSOrigin,
		StoreTimeout:  cfg.StoreTimeout,
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Logger.Infof("Event ID: SERVER_START, Description: listening on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logging.Logger.Info("Event ID: SERVER_SHUTDOWN, Description: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
