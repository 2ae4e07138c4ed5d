package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logger"
	"storefront/internal/notify"
	"storefront/internal/router"
	"storefront/internal/services"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "storefront",
		Short:   "Storefront API: catalog, Paystack checkout and order management",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, log, database, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			return db.RunMigrations(ctx, database, log)
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, log, database, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(ctx, database, log); err != nil {
				return err
			}

			user, err := services.NewUserService(database, log).CreateAdmin(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Admin %s created (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func bootstrap(ctx context.Context) (config.Config, zerolog.Logger, *sql.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Config{}, zerolog.Nop(), nil, err
	}

	log := logger.InitLogger(cfg.Env, cfg.LogLevel)

	database, err := db.InitDB(ctx, cfg.DBUrl, log)
	if err != nil {
		return cfg, log, nil, err
	}
	return cfg, log, database, nil
}

func serve(ctx context.Context) error {
	cfg, log, database, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	log.Info().Str("version", Version).Msg("Starting storefront")

	if cfg.UsingDefaultJWTSecret() {
		log.Warn().Msg("JWT_SECRET not set, using default key")
	}
	if cfg.PaystackSecretKey == "" {
		log.Warn().Msg("PAYSTACK_SECRET_KEY not set, checkout and webhooks are disabled")
	}

	if err := db.RunMigrations(ctx, database, log); err != nil {
		return err
	}

	notifier, closeNotifier := buildNotifier(cfg, log)
	defer closeNotifier()

	dispatcher := notify.NewDispatcher(log)

	r := router.SetupRouter(router.Dependencies{
		Config:        cfg,
		DB:            database,
		Logger:        log,
		Notifications: services.NewOrderNotifications(notifier, dispatcher),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("Server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server error")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	dispatcher.Wait()
	log.Info().Msg("Server stopped")
	return nil
}

// buildNotifier sends mail when credentials are configured and logs
// otherwise. Order events also go to RabbitMQ when RABBIT_URL is set.
func buildNotifier(cfg config.Config, log zerolog.Logger) (notify.Notifier, func()) {
	var notifiers notify.Multi
	closeFn := func() {}

	if cfg.Mail.Enabled() {
		notifiers = append(notifiers, notify.NewMailer(cfg.Mail, log))
		log.Info().Str("provider", cfg.Mail.Provider).Msg("Email notifications enabled")
	} else {
		notifiers = append(notifiers, notify.NewLogNotifier(log))
		log.Warn().Msg("Email credentials not set, notifications will only be logged")
	}

	if cfg.RabbitURL != "" {
		publisher, err := notify.NewEventPublisher(cfg.RabbitURL, cfg.OrderExchange, log)
		if err != nil {
			log.Error().Err(err).Msg("Order events disabled")
		} else {
			notifiers = append(notifiers, publisher)
			closeFn = func() {
				if err := publisher.Close(); err != nil {
					log.Warn().Err(err).Msg("Closing order event publisher")
				}
			}
		}
	}

	return notifiers, closeFn
}
