package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/internal/metrics"
	"github.com/mohammad-safakhou/chatfusion/internal/ratelimit"
	"github.com/mohammad-safakhou/chatfusion/internal/store"
	"github.com/mohammad-safakhou/chatfusion/repository/redis_repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators behind the HTTP routes. Store and Limiter
// may be nil: the chat history routes and rate limiting are then disabled.
type Deps struct {
	Chat    Answerer
	Store   ChatStore
	Limiter Limiter
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

// New builds the echo instance with middleware and routes.
func New(cfg *config.Config, deps Deps) *echo.Echo {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	httpLog := log.With(logger.String("component", "http"))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		httpLog.Warn("request failed",
			logger.Int("status", code),
			logger.String("method", req.Method),
			logger.String("path", req.URL.Path),
			logger.String("client", ClientIP(req)),
			logger.Error(err),
		)
		if !c.Response().Committed {
			_ = c.JSON(code, HTTPError{Error: msg})
		}
	}
	e.Use(requestLogger(httpLog, m))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, "X-Real-IP", "X-Forwarded-For"},
	}))
	if cfg.RateLimit.Enabled && deps.Limiter != nil {
		e.Use(RateLimit(deps.Limiter, cfg.RateLimit.SkipPaths, m, log.With(logger.String("component", "ratelimit"))))
	}

	e.GET("/healthz", healthz(deps.Store, log))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if cfg.Server.DocsEnabled {
		registerDocs(e)
	}

	api := e.Group("/api")
	(&ChatHandler{Chat: deps.Chat, Store: deps.Store, Log: log}).Register(api)
	(&ModelsHandler{Default: cfg.LLM.DefaultModel}).Register(api)
	if deps.Store != nil {
		(&ChatsHandler{Store: deps.Store, Log: log}).Register(api)
	}
	return e
}

type pinger interface {
	Ping(ctx context.Context) error
}

// healthz answers 503 when the chat store cannot reach its database.
func healthz(st ChatStore, log logger.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if p, ok := st.(pinger); ok {
			if err := p.Ping(c.Request().Context()); err != nil {
				log.Warn("health check failed", logger.Error(err))
				return c.String(http.StatusServiceUnavailable, "unavailable")
			}
		}
		return c.String(http.StatusOK, "ok")
	}
}

// requestLogger logs each request and records it in the HTTP metrics.
func requestLogger(log logger.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(start)
			m.ObserveHTTP(req.Method, route, status, elapsed)
			log.Debug("request",
				logger.String("method", req.Method),
				logger.String("path", req.URL.Path),
				logger.Int("status", status),
				logger.Duration("elapsed", elapsed),
			)
			return nil
		}
	}
}

// Run wires every dependency from cfg, serves HTTP and shuts down
// gracefully once ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	m := metrics.New(nil)

	rdb, err := redis_repository.Conn(ctx, cfg.Storage.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	dsn := cfg.Storage.Postgres.DSN()
	if cfg.Server.AutoMigrate {
		if err := Migrate(cfg.Server.MigrationsDir, dsn, "up", 0); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("migrations applied", logger.String("dir", cfg.Server.MigrationsDir))
	}
	st, err := store.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	svc, err := NewChatService(cfg, rdb, log, m)
	if err != nil {
		return err
	}

	e := New(cfg, Deps{
		Chat:    svc,
		Store:   st,
		Limiter: ratelimit.NewFromConfig(rdb, cfg.RateLimit),
		Metrics: m,
		Logger:  log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logger.String("addr", cfg.Server.Address))
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", logger.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
