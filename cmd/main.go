package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"dashboard/internal/controller"
	"dashboard/internal/model"
	"dashboard/internal/observability"
	"dashboard/internal/repository"
	"dashboard/internal/service"
	"dashboard/internal/view"
	"dashboard/pkg/config"
	"dashboard/pkg/localization"
	"dashboard/pkg/logging"

	"fyne.io/fyne/v2/app"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	locale, err := localization.NewLocale(cfg.Language)
	if err != nil {
		logger.Warn("falling back to untranslated labels", zap.Error(err))
		locale = localization.Identity()
	}

	metrics := observability.NewCollector("dashboard")
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, err := repository.NewDashboardRepository(repository.Endpoints{
		BaseURL:      cfg.Endpoints.BaseURL,
		ChartsPath:   cfg.Endpoints.ChartsPath,
		TopUsersPath: cfg.Endpoints.TopUsersPath,
	}, repository.NewAuthorizedClient(ctx, cfg.Endpoints.Token))
	if err != nil {
		logger.Fatal("invalid data service endpoints", zap.Error(err))
	}
	svc := service.NewDashboardService(repo, logger, metrics)

	opts := controller.Options{
		DefaultKind: model.ChartKind(cfg.DefaultChartKind),
		DefaultTopN: model.ParseTopN(cfg.DefaultTopN),
		Policy:      controller.LastResolved,
	}
	if cfg.DropStale {
		opts.Policy = controller.LatestIssued
	}
	ctrl := controller.NewDashboardController(svc, opts, logger, metrics)
	ctrl.Start(ctx)
	defer ctrl.Close()

	myApp := app.NewWithID("dashboard.topusers")
	mainWindow := view.NewMainWindow(myApp, ctrl, locale, cfg, logger)
	mainWindow.Show()
}
