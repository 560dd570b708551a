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

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/c14220110/hospital-dashboard/config"
	authModels "github.com/c14220110/hospital-dashboard/internal/auth/models"
	authServices "github.com/c14220110/hospital-dashboard/internal/auth/services"
	"github.com/c14220110/hospital-dashboard/internal/common/middlewares"
	"github.com/c14220110/hospital-dashboard/internal/common/session"
	"github.com/c14220110/hospital-dashboard/internal/routes"
	"github.com/c14220110/hospital-dashboard/pkg/logger"
	"github.com/c14220110/hospital-dashboard/pkg/storage/mariadb"
	"github.com/c14220110/hospital-dashboard/pkg/storage/redisstore"
	"github.com/c14220110/hospital-dashboard/ws"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-dashboard",
		Short: "Hospital administration dashboard API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := mariadb.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := mariadb.Migrate(ctx, db)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info().Int("statements", n).Msg("migrations applied")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var in authModels.NewAdmin

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx := context.Background()
			db, err := mariadb.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			svc := authServices.NewAuthService(db, cfg.MaxLoginAttempts, cfg.LockoutDuration)
			id, err := svc.CreateAdmin(ctx, in)
			if err != nil {
				return err
			}
			log.Info().Int64("id", id).Str("username", in.Username).Msg("admin user created")
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&in.FullName, "full-name", "", "display name")
	cmd.Flags().StringVar(&in.Role, "role", "admin", "role label")
	return cmd
}

func setup() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(cfg.LogLevel, cfg.IsDev()), nil
}

func runServer() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := mariadb.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var store session.Store
	rdb, err := redisstore.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("sessions stored in redis")
	} else {
		store = session.NewMemoryStore()
		log.Warn().Msg("REDIS_ADDR not set, sessions kept in memory")
	}

	sessions := session.NewManager(store, session.Options{
		CookieName: cfg.SessionCookieName,
		Secret:     []byte(cfg.SessionSecret),
		Timeout:    cfg.SessionTimeout,
		Secure:     !cfg.IsDev(),
	})

	hub := ws.NewHub()
	go hub.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewares.Recovery(log))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			c.Set("request_id", id)
		},
	}))
	e.Use(middlewares.Logger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(middlewares.LoadSession(sessions))

	routes.Init(e, routes.Deps{
		DB:       db,
		Config:   cfg,
		Sessions: sessions,
		Hub:      hub,
		Upgrader: ws.NewUpgrader(cfg.CORSOrigins),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.AppEnv).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
