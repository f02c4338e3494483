package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/flowfin/go-conciliador/internal/common/graceful"
	commonhttp "github.com/flowfin/go-conciliador/internal/common/http"
	"github.com/flowfin/go-conciliador/internal/config"
	"github.com/flowfin/go-conciliador/internal/deliveries/http/health"
	"github.com/flowfin/go-conciliador/internal/services"

	v1closure "github.com/flowfin/go-conciliador/internal/deliveries/http/v1/closure"
	v1reconciliation "github.com/flowfin/go-conciliador/internal/deliveries/http/v1/reconciliation"
	v1validation "github.com/flowfin/go-conciliador/internal/deliveries/http/v1/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

type svc struct {
	app             *fiber.App
	addr            string
	gracefulTimeout time.Duration
}

var _ graceful.ProcessStartStopper = (*svc)(nil)

func (s *svc) Start() graceful.ProcessStarter {
	return func() error {
		return s.app.Listen(s.addr)
	}
}

func (s *svc) Stop() graceful.ProcessStopper {
	return func(ctx context.Context) error {
		err := s.app.ShutdownWithContext(ctx)
		if err != nil {
			zap.L().Error("[SHUTDOWN] HTTP server error", zap.Error(err))
		} else {
			zap.L().Info("[SHUTDOWN] HTTP server stopped successfully")
		}

		return err
	}
}

func New(
	conf config.Config,
	reconService services.ReconService,
	validationService services.ValidationService,
) *svc {
	app := fiber.New(fiber.Config{
		AppName:               conf.App.Name,
		DisableStartupMessage: true,
	})

	svc := &svc{
		app:             app,
		addr:            fmt.Sprintf(":%d", conf.App.HTTPPort),
		gracefulTimeout: conf.App.GracefulTimeout,
	}

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(requestLogger())

	// prometheus metrics
	prometheus := fiberprometheus.New(conf.App.Name)
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	apiGroup := app.Group("/api")

	// health check
	health.New(apiGroup)

	v1Group := apiGroup.Group("/v1")
	v1reconciliation.New(v1Group, reconService)
	v1validation.New(v1Group, validationService)
	v1closure.New(v1Group, validationService)

	app.Use(func(c *fiber.Ctx) error {
		errorMessage := fmt.Errorf("route '%s' does not exist in this API", c.OriginalURL())
		return commonhttp.RestErrorResponse(c, nethttp.StatusNotFound, errorMessage)
	})

	return svc
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		zap.L().Info("[HTTP] request handled",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestId", fmt.Sprint(c.Locals(requestid.ConfigDefault.ContextKey))))

		return err
	}
}
