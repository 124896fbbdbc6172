package api

import (
	"context"
	"os"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const checkTimeout = 2 * time.Second

type HealthChecker interface {
	HealthCheck() echo.HandlerFunc
}

type healthChecker struct {
	health *health.Health
}

func NewHealthChecker(version string, checks ...health.Config) (HealthChecker, error) {
	h, err := health.New(health.WithComponent(health.Component{Name: "productsite", Version: version}))
	if err != nil {
		return nil, errors.Wrap(err, "create health checker")
	}

	for _, check := range checks {
		if err = h.Register(check); err != nil {
			return nil, errors.Wrapf(err, "register health check %s", check.Name)
		}
	}

	return &healthChecker{
		health: h,
	}, nil
}

func (h *healthChecker) HealthCheck() echo.HandlerFunc {
	return echo.WrapHandler(h.health.Handler())
}

func PostgresCheck(pool *pgxpool.Pool) health.Config {
	return health.Config{
		Name:    "postgres",
		Timeout: checkTimeout,
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	}
}

// ContentDirCheck fails when the content directory disappears.
func ContentDirCheck(dir string) health.Config {
	return health.Config{
		Name:    "content",
		Timeout: checkTimeout,
		Check: func(context.Context) error {
			info, err := os.Stat(dir)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return errors.Errorf("%s is not a directory", dir)
			}
			return nil
		},
	}
}
