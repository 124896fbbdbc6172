package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/yakoovad/productsite/internal/api"
	"github.com/yakoovad/productsite/internal/cache"
	"github.com/yakoovad/productsite/internal/content"
	"github.com/yakoovad/productsite/internal/service"
	"github.com/yakoovad/productsite/internal/squeak"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve product pages, the content API and the auth widget",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	l := appLogger
	ctx = logger.WithLogger(ctx, l)
	l.Info("starting application", zap.String("version", version))

	if appConfig.Auth.TokenSecret == "" {
		l.Warn("auth.token_secret is empty")
	}

	src, err := openSource(ctx, appConfig)
	if err != nil {
		return err
	}
	defer src.Close()

	composer, err := newComposer(src, appConfig)
	if err != nil {
		return err
	}

	pages := service.NewPageService(src, composer).
		WithCache(cache.NewCache[[]byte](appConfig.Cache.TTL), cache.NewCache[*service.ComposedPage](appConfig.Cache.TTL))
	team := service.NewTeamService(src)

	squeakClient := squeak.NewClient(appConfig.Squeak.APIHost, appConfig.Squeak.OrganizationID, appConfig.Squeak.ResetRedirect, appConfig.Squeak.Timeout)
	authFlows := service.NewAuthService(squeakClient).WithTTL(appConfig.Auth.FlowTTL)
	go authFlows.RunSweeper(ctx, sweepInterval)

	var checks []health.Config
	if src.pool != nil {
		checks = append(checks, api.PostgresCheck(src.pool))
	}
	if src.files != nil {
		checks = append(checks, api.ContentDirCheck(src.files.Dir()))
	}
	checker, err := api.NewHealthChecker(version, checks...)
	if err != nil {
		return err
	}

	if appConfig.Content.Watch && src.files != nil {
		files := src.files
		w := &content.Watcher{
			Dir: files.Dir(),
			OnChange: func(ctx context.Context) {
				if err := files.Reload(); err != nil {
					logger.FromContext(ctx).Error("failed to reload content", zap.Error(err))
					return
				}
				pages.Purge(ctx)
			},
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				l.Error("content watcher stopped", zap.Error(err))
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	handler := api.NewHandler(l).
		WithHealthChecker(checker).
		WithPageService(pages).
		WithTeamService(team).
		WithAuthService(authFlows).
		WithSessionTTL(appConfig.Auth.SessionTTL).
		WithWidgetOptions(api.WidgetOptions{
			LoginButton:  appConfig.Squeak.LoginButton,
			SignUpButton: appConfig.Squeak.SignUpButton,
		}).
		WithAuthRateLimit(appConfig.RateLimit.AuthPerMinute)

	handler.RegisterRoutes(e)

	serveErr := make(chan error, 1)
	go func() {
		l.Info("server starting", zap.String("addr", appConfig.HTTP.Addr))
		if err := e.Start(appConfig.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err = <-serveErr:
		if err != nil {
			return errors.Wrap(err, "start server")
		}
	case <-ctx.Done():
	}

	l.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.HTTP.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
