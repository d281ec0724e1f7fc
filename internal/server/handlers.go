package server

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/report"
	"go.uber.org/zap"
)

type messageRequest struct {
	Message string `json:"message"`
}

type turnResponse struct {
	SessionID string          `json:"session_id"`
	Phase     interview.Phase `json:"phase"`
	Reply     string          `json:"reply"`
	Finalized bool            `json:"finalized"`
	Error     string          `json:"error,omitempty"`
}

func newTurnResponse(s *interview.Session, reply string) turnResponse {
	return turnResponse{
		SessionID: s.ID,
		Phase:     s.Phase,
		Reply:     reply,
		Finalized: s.Finalized,
	}
}

func (s *Server) health(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":   "healthy",
		"time":     s.now(),
		"sessions": s.sessions.len(),
	}
	if s.breaker != nil {
		resp["breaker"] = s.breaker.BreakerState()
	}
	return c.JSON(resp)
}

func (s *Server) startSession() *interview.Session {
	session := interview.NewSession()
	s.machine.Start(session)
	s.sessions.add(session)
	return session
}

func (s *Server) createSession(c *fiber.Ctx) error {
	session := s.startSession()
	s.logger.Info("session created", zap.String(logger.FieldSessionID, session.ID))

	return c.Status(fiber.StatusCreated).JSON(newTurnResponse(session, session.LastReply()))
}

func (s *Server) getSession(c *fiber.Ctx) error {
	e, ok := s.sessions.get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	e.mu.Lock()
	snapshot := e.session.Clone()
	e.mu.Unlock()

	return c.JSON(snapshot)
}

func (s *Server) postMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	e, ok := s.sessions.get(c.Params("id"))
	if !ok {
		return sessionNotFound(c)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.TurnTimeout)
	defer cancel()

	e.mu.Lock()
	defer e.mu.Unlock()

	reply, err := s.machine.Process(ctx, e.session, req.Message)
	e.touched = time.Now()

	resp := newTurnResponse(e.session, reply)
	if err != nil {
		resp.Error = err.Error()
		if errors.Is(err, ai.ErrOracleUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(resp)
	}

	return c.JSON(resp)
}

// resetSession drops the conversation and starts a new one under a new ID.
func (s *Server) resetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.sessions.remove(id) {
		return sessionNotFound(c)
	}

	session := s.startSession()
	s.logger.Info("session reset",
		zap.String("previous_session_id", id),
		zap.String(logger.FieldSessionID, session.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(newTurnResponse(session, session.LastReply()))
}

func (s *Server) listCandidates(c *fiber.Ctx) error {
	entries := report.Build(s.store.All(), s.now()).Candidates
	return c.JSON(entries)
}

func (s *Server) getCandidate(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid email")
	}

	record, ok := s.store.Get(email)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "candidate not found",
		})
	}
	return c.JSON(report.NewEntry(record))
}

func (s *Server) getReport(c *fiber.Ctx) error {
	format := strings.ToLower(strings.TrimSpace(c.Query("format", report.FormatText)))

	out, err := s.reports.Format(report.Build(s.store.All(), s.now()), format)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	switch format {
	case report.FormatJSON:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	case report.FormatMarkdown, "md":
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return c.SendString(out)
}

func sessionNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "session not found",
	})
}
