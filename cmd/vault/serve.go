package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/vault/internal/api"
	"github.com/mtlprog/vault/internal/config"
	"github.com/mtlprog/vault/internal/database"
	"github.com/mtlprog/vault/internal/export"
	"github.com/mtlprog/vault/internal/horizon"
	"github.com/mtlprog/vault/internal/snapshot"
	"github.com/mtlprog/vault/internal/source"
	"github.com/mtlprog/vault/internal/token"
	"github.com/mtlprog/vault/internal/worker"
)

// app bundles the components shared by every command.
type app struct {
	cfg     config.Config
	profile config.NetworkProfile
	source  *source.Cached
}

func newApp() (*app, error) {
	cfg := config.Load()

	profile, err := config.LoadNetworkProfile(cfg.NetworkProfilePath)
	if err != nil {
		return nil, err
	}
	if cfg.HorizonURL != "" {
		profile.HorizonURL = cfg.HorizonURL
	}

	horizonClient := horizon.NewClient(profile.HorizonURL, cfg.HorizonRetryMax, cfg.HorizonRetryBaseDelay)
	src := source.NewCached(source.NewHorizonSource(horizonClient, profile), cfg.SourceCacheTTL)

	slog.Info("network profile loaded",
		"network", profile.Name, "horizon", profile.HorizonURL, "token", profile.TokenCode)

	return &app{cfg: cfg, profile: profile, source: src}, nil
}

// openSnapshots connects to PostgreSQL, applies migrations and registers the vault token.
func (a *app) openSnapshots(ctx context.Context) (*pgxpool.Pool, *snapshot.Service, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(ctx, pool, database.Migrations()); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repo := snapshot.NewPgRepository(pool)
	if _, err := repo.EnsureToken(ctx, a.profile.TokenCode, a.profile.TokenName, a.profile.TokenIssuer); err != nil {
		pool.Close()
		return nil, nil, err
	}

	// Snapshots use their own aggregator so captures never reset the API's identity.
	svc := snapshot.NewService(token.NewAggregator(a.source), repo, a.profile.TokenCode)
	return pool, svc, nil
}

// exportHook returns the configured spreadsheet export, or nil when none is configured.
func (a *app) exportHook(ctx context.Context, snapshots *snapshot.Service) (*export.Service, error) {
	if a.cfg.GoogleSheetsID == "" || a.cfg.GoogleCredentialsJSON == "" {
		return nil, nil
	}
	writer, err := export.NewSheetsWriter(ctx, a.cfg.GoogleSheetsID, a.cfg.GoogleCredentialsJSON)
	if err != nil {
		return nil, err
	}
	return export.NewService(snapshots, writer), nil
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API and background workers",
		Action: func(c *cli.Context) error {
			ctx := c.Context

			a, err := newApp()
			if err != nil {
				return err
			}

			views := token.NewAggregator(a.source)

			var snapshots api.SnapshotReader
			pool, snapshotSvc, err := a.openSnapshots(ctx)
			if err != nil {
				slog.Warn("snapshots disabled", "error", err)
			} else {
				defer pool.Close()
				snapshots = snapshotSvc

				hook, err := a.exportHook(ctx, snapshotSvc)
				if err != nil {
					return fmt.Errorf("configuring export: %w", err)
				}
				var afterSnapshot worker.AfterSnapshotHook
				if hook != nil {
					afterSnapshot = hook
				} else {
					slog.Info("GOOGLE_SHEETS_ID not set, spreadsheet export disabled")
				}
				go worker.NewSnapshotWorker(snapshotSvc, a.cfg.SnapshotWorkerInterval, afterSnapshot).Run(ctx)
			}

			go worker.NewRefreshWorker(views, a.cfg.RefreshWorkerInterval).Run(ctx)

			if a.cfg.AdminAPIKey == "" {
				slog.Warn("ADMIN_API_KEY not set, refresh endpoint is unprotected")
			}

			handler := api.NewHandler(views, a.source, snapshots, a.profile)
			srv := api.NewServer(a.cfg.HTTPPort, handler, a.cfg.AdminAPIKey)

			serveErr := make(chan error, 1)
			go func() {
				log.Printf("HTTP server listening on :%s", a.cfg.HTTPPort)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("HTTP server: %w", err)
				}
			}
			log.Println("Shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
			}

			log.Println("Shutdown complete")
			return nil
		},
	}
}
