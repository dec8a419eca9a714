package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/PromptGuard/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// Server interface defines the common behavior for all servers
type Server interface {
	Run() error
	Shutdown(ctx context.Context) error
}

type BaseServer struct {
	Config *config.Config
	Logger *logrus.Logger
	Router *fiber.App
}

func NewBaseServer(cfg *config.Config, logger *logrus.Logger) *BaseServer {
	bodyLimit := cfg.Server.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 1024 * 1024
	}
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReduceMemoryUsage:     true,
		Network:               fiber.NetworkTCP,
		BodyLimit:             bodyLimit,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
	})

	r.Server().NoDefaultServerHeader = true
	r.Server().NoDefaultDate = true

	return &BaseServer{
		Config: cfg,
		Logger: logger,
		Router: r,
	}
}

func (s *BaseServer) setupHealthCheck() {
	s.Router.Get(HealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		if err := r.BuildRoutes(s.Router); err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func (s *BaseServer) setupMetricsEndpoint() {
	if !s.Config.Metrics.Enabled {
		s.Logger.Info("prometheus metrics are disabled by configuration")
		return
	}
	handler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(prometheus.Gatherer(), promhttp.HandlerOpts{}),
	)
	s.Router.Get(MetricsPath, func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})
}

func (s *BaseServer) listen() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	tlsConfig, err := config.BuildTLSConfig(s.Config.Server.TLS)
	if err != nil {
		return fmt.Errorf("failed to build TLS config: %w", err)
	}
	if tlsConfig == nil {
		s.Logger.WithField("addr", addr).Info("starting firewall server")
		return s.Router.Listen(addr)
	}

	ln, err := net.Listen(fiber.NetworkTCP, addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.Logger.WithField("addr", addr).Info("starting firewall server with TLS")
	return s.Router.Listener(tls.NewListener(ln, tlsConfig))
}

func (s *BaseServer) Shutdown(ctx context.Context) error {
	return s.Router.ShutdownWithContext(ctx)
}
