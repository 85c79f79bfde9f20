package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dashboard/internal/model"
	"dashboard/internal/stubserver"
	"dashboard/pkg/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	addr     string
	users    int
	catalog  []string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stubserver",
		Short: "Serve the top users data service locally",
		Long: `stubserver answers GET /charts and POST /top-users with a fixed
chart catalog and a deterministic ranked user list.`,
		Args: cobra.NoArgs,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&addr, "addr", ":3001", "Listen address")
	rootCmd.Flags().IntVar(&users, "users", 50, "Number of sample users")
	rootCmd.Flags().StringSliceVar(&catalog, "catalog", nil, "Chart kinds to advertise (default: bar,pie,line,area,radar,composed)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if users < 0 {
		return fmt.Errorf("invalid user count: %d", users)
	}

	logger, err := logging.New(logLevel, "production")
	if err != nil {
		return err
	}
	defer logger.Sync()

	entries := stubserver.DefaultCatalog()
	if len(catalog) > 0 {
		entries = make([]model.ChartCatalogEntry, 0, len(catalog))
		for _, kind := range catalog {
			entries = append(entries, model.ChartCatalogEntry{Type: model.ChartKind(strings.TrimSpace(kind))})
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           stubserver.New(entries, stubserver.SampleUsers(users), logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub data service listening", zap.String("addr", addr), zap.Int("users", users), zap.Int("charts", len(entries)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
