package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/urfave/cli/v2"

	"github.com/sidtn/order-read-api/configs"
	"github.com/sidtn/order-read-api/internal/bootstrap"
	"github.com/sidtn/order-read-api/internal/logging"
	"github.com/sidtn/order-read-api/internal/seed"
)

func main() {
	app := &cli.App{
		Name:  "order-read-api",
		Usage: "read-only order lookup service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "configs",
				Usage:   "directory with base.yaml and <env>.yaml overlays",
				EnvVars: []string{"ORDERAPI_CONFIG_DIR"},
			},
			&cli.StringFlag{
				Name:    "env",
				Value:   "dev",
				Usage:   "config overlay to apply (dev | staging | prod)",
				EnvVars: []string{"APP_ENV"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP front end",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending schema migrations",
				Action: runMigrate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Value: "file://migrations",
						Usage: "migration source URL",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "bulk-load a deterministic test dataset",
				Action: runSeed,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "users", Value: 100},
					&cli.IntFlag{Name: "products", Value: 1000},
					&cli.IntFlag{Name: "orders", Value: 10000},
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (configs.Config, error) {
	return configs.Load(c.String("config"), c.String("env"))
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitWithConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: app.Router,
	}

	l := logging.New("serve")
	errCh := make(chan error, 1)
	go func() {
		l.Info("listening", "addr", cfg.App.HTTPAddr, "env", c.String("env"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	l.Info("server stopped")
	return nil
}

func runMigrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	m, err := migrate.New(c.String("source"), "mysql://"+cfg.MySQL.DSN)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	logging.New("migrate").Info("migrations applied")
	return nil
}

func runSeed(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return seed.Run(ctx, cfg, seed.Params{
		Users:    c.Int("users"),
		Products: c.Int("products"),
		Orders:   c.Int("orders"),
	})
}
