package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medisync/medisync/internal/config"
	"github.com/medisync/medisync/internal/domain/dashboard"
	"github.com/medisync/medisync/internal/platform/auth"
	"github.com/medisync/medisync/internal/platform/blobstore"
	"github.com/medisync/medisync/internal/store"
	"github.com/medisync/medisync/pkg/caldate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medisync-server",
		Short: "MediSync clinical records API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(alertsCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func alertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Print the low-stock and expiring-soon alerts for an owner of the demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetInt64("owner")
			horizon, _ := cmd.Flags().GetInt("horizon")
			today, _ := cmd.Flags().GetString("today")
			return printAlerts(cmd.OutOrStdout(), owner, horizon, today)
		},
	}
	cmd.Flags().Int64("owner", store.DemoOwnerID, "user id whose medications are checked")
	cmd.Flags().Int("horizon", 30, "expiring-soon window in days")
	cmd.Flags().String("today", "", "evaluate as of this date (YYYY-MM-DD) instead of now")
	return cmd
}

func printAlerts(w io.Writer, owner int64, horizon int, today string) error {
	if horizon <= 0 {
		return fmt.Errorf("--horizon must be positive, got %d", horizon)
	}
	now := time.Now
	if today != "" {
		d, err := caldate.Parse(today)
		if err != nil {
			return fmt.Errorf("--today: %w", err)
		}
		at := d.Time
		now = func() time.Time { return at }
	}

	st := store.NewSeeded(store.WithClock(now), store.WithHorizon(horizon))
	svc := dashboard.NewService(st, horizon)
	svc.SetClock(now)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(svc.Alerts(context.Background(), owner))
}

func hashPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for seeding user accounts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cost, _ := cmd.Flags().GetInt("cost")
			h, err := auth.BcryptHasher{Cost: cost}.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().Int("cost", 10, "bcrypt cost")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = randomSecret()
		logger.Warn().Msg("SESSION_SECRET not set; sessions will not survive a restart")
	}

	policy, _ := store.ParseDeletePolicy(cfg.DeletePolicy)
	opts := []store.Option{store.WithHorizon(cfg.ExpiryHorizonDays), store.WithDeletePolicy(policy)}
	var records *store.Store
	if cfg.SeedDemoData {
		records = store.NewSeeded(opts...)
		logger.Info().Msg("seeded demo data")
	} else {
		records = store.New(opts...)
	}

	ctx := context.Background()
	photos, err := newPhotoStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure photo store")
	}

	revoked := auth.NewTokenRevocationStore(5 * time.Minute)
	defer revoked.Close()

	e := newServer(cfg, logger, records, photos, revoked)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newPhotoStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	if cfg.PhotoStore != "s3" {
		return blobstore.NewInMemoryBlobStore(cfg.PhotoMaxBytes), nil
	}
	return blobstore.NewS3BlobStore(ctx, blobstore.S3Config{
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Prefix:          cfg.S3Prefix,
		MaxSize:         cfg.PhotoMaxBytes,
	})
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := crypto_rand.Read(b); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b)
}
