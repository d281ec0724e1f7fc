// Package server exposes interview sessions and the admin candidate browser over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/report"
	"go.uber.org/zap"
)

const (
	defaultSessionTTL    = 30 * time.Minute
	defaultSweepInterval = time.Minute
	defaultTurnTimeout   = 2 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

type Config struct {
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	SessionTTL    time.Duration
	SweepInterval time.Duration
	// TurnTimeout bounds one message turn including all model calls.
	TurnTimeout time.Duration
	AccessLog   bool
}

// Candidates is the read side of the candidate store.
type Candidates interface {
	All() []*candidate.Candidate
	Get(email string) (*candidate.Candidate, bool)
}

// Authorizer checks admin credentials.
type Authorizer func(username, password string) bool

// BreakerReporter exposes the model client circuit state for health checks.
type BreakerReporter interface {
	BreakerState() string
}

type Deps struct {
	Machine    *interview.Machine
	Candidates Candidates
	Authorize  Authorizer
	Reports    *report.Registry
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	Breaker BreakerReporter
}

type Server struct {
	app      *fiber.App
	machine  *interview.Machine
	store    Candidates
	reports  *report.Registry
	breaker  BreakerReporter
	sessions *registry
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

func New(deps Deps, cfg Config, log *zap.Logger) (*Server, error) {
	if deps.Machine == nil {
		return nil, errors.New("machine is required")
	}
	if deps.Candidates == nil {
		return nil, errors.New("candidate store is required")
	}
	if deps.Authorize == nil {
		return nil, errors.New("admin authorizer is required")
	}
	if deps.Reports == nil {
		deps.Reports = report.NewRegistry()
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = defaultTurnTimeout
	}

	s := &Server{
		machine:  deps.Machine,
		store:    deps.Candidates,
		reports:  deps.Reports,
		breaker:  deps.Breaker,
		sessions: newRegistry(),
		cfg:      cfg,
		logger:   logger.WithFields(log),
		now:      time.Now,
	}

	app := fiber.New(fiber.Config{
		AppName:               "hh-screener",
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	api := app.Group("/api/v1")
	api.Get("/health", s.health)

	api.Post("/sessions", s.createSession)
	api.Get("/sessions/:id", s.getSession)
	api.Post("/sessions/:id/messages", s.postMessage)
	api.Delete("/sessions/:id", s.resetSession)

	adminGroup := api.Group("/admin", basicauth.New(basicauth.Config{
		Realm:      "hh-screener admin",
		Authorizer: deps.Authorize,
	}))
	adminGroup.Get("/candidates", s.listCandidates)
	adminGroup.Get("/candidates/:email", s.getCandidate)
	adminGroup.Get("/report", s.getReport)

	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	s.app = app
	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on addr until ctx is cancelled. Idle sessions are swept in the background.
func (s *Server) Run(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.sweepLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", addr))
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sessions.sweep(s.cfg.SessionTTL); removed > 0 {
				s.logger.Debug("idle sessions swept", zap.Int("removed", removed))
			}
		}
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
