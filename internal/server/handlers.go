package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/echelon/internal/model"
	"github.com/ppiankov/echelon/internal/pipeline"
	"github.com/ppiankov/echelon/internal/usage"
	"go.uber.org/zap"
)

// ClassifyRequest is the body of POST /api/v1/classify
type ClassifyRequest struct {
	Statement string       `json:"statement"`
	Engine    model.Engine `json:"engine,omitempty"` // rules or llm; empty uses the configured engine
}

// UsageResponse is the body of GET /api/v1/usage
type UsageResponse struct {
	Daily   usage.Allowance `json:"daily"`
	Session usage.Allowance `json:"session"`
}

// limitError names the ceiling a submission ran into
type limitError struct {
	scope     string
	allowance usage.Allowance
}

func (e *limitError) Error() string {
	reset := e.allowance.ResetAt.Format("15:04 MST")
	if e.scope == usage.ScopeDaily {
		return fmt.Sprintf("The daily limit of %d classifications has been reached. It resets at %s.", e.allowance.Ceiling, reset)
	}
	return fmt.Sprintf("You have used all %d classifications for today. Your allowance resets at %s.", e.allowance.Ceiling, reset)
}

func (e *limitError) Unwrap() error {
	return usage.ErrLimitExceeded
}

// admit records one submission against the session and daily ceilings and
// returns the session allowance left afterwards. The session is charged first
// so a request refused by its own session never touches the daily counter.
func (s *Server) admit(ctx context.Context, session string) (usage.Allowance, error) {
	a, err := s.session.Take(ctx, session)
	if err != nil {
		if errors.Is(err, usage.ErrLimitExceeded) {
			return a, &limitError{scope: usage.ScopeSession, allowance: a}
		}
		return a, err
	}

	if d, err := s.daily.Take(ctx, usage.GlobalSubject); err != nil {
		s.refund(ctx, s.session, session)
		if errors.Is(err, usage.ErrLimitExceeded) {
			return d, &limitError{scope: usage.ScopeDaily, allowance: d}
		}
		return d, err
	}
	return a, nil
}

// release gives back both uses of an admitted submission that could not be
// classified, so resubmitting it is free. It returns the session allowance.
func (s *Server) release(ctx context.Context, session string) usage.Allowance {
	s.refund(ctx, s.daily, usage.GlobalSubject)
	return s.refund(ctx, s.session, session)
}

func (s *Server) refund(ctx context.Context, l *usage.Limiter, subject string) usage.Allowance {
	a, err := l.Refund(context.WithoutCancel(ctx), subject)
	if err != nil {
		s.logger.Warn("usage refund failed", zap.String("scope", l.Scope()), zap.Error(err))
	}
	return a
}

// admitStatus maps an admit error to an HTTP status
func admitStatus(err error) int {
	if errors.Is(err, usage.ErrLimitExceeded) {
		return http.StatusTooManyRequests
	}
	return http.StatusServiceUnavailable
}

func (s *Server) getForm(c *gin.Context) {
	view := s.newView(c)
	c.HTML(http.StatusOK, "index", view)
}

func (s *Server) postForm(c *gin.Context) {
	view := s.newView(c)
	view.Statement = c.PostForm("statement")

	if err := pipeline.ValidateStatement(view.Statement, s.config.MaxStatementLength); err != nil {
		view.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index", view)
		return
	}

	allowance, err := s.admit(c.Request.Context(), sessionID(c))
	if err != nil {
		view.Error = limitMessage(err)
		if errors.Is(err, usage.ErrLimitExceeded) {
			view.Remaining = allowance.Remaining
		}
		c.HTML(admitStatus(err), "index", view)
		return
	}
	view.Remaining = allowance.Remaining

	v, err := s.pipeline.Classify(c.Request.Context(), view.Statement)
	if err != nil {
		s.logger.Warn("form classification failed", zap.Error(err))
		if a := s.release(c.Request.Context(), sessionID(c)); a.Ceiling > 0 {
			view.Remaining = a.Remaining
		}
		view.Error = "Classification failed. Please submit the statement again."
		c.HTML(http.StatusBadGateway, "index", view)
		return
	}

	view.Result = pipeline.RenderText(v)
	view.Warnings = v.Warnings
	c.HTML(http.StatusOK, "index", view)
}

func (s *Server) classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	engine := req.Engine
	switch engine {
	case "":
		engine = s.pipeline.Engine()
	case model.EngineRules, model.EngineLLM:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("unknown engine %q (supported: rules, llm)", engine)})
		return
	}

	if err := pipeline.ValidateStatement(req.Statement, s.config.MaxStatementLength); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	allowance, err := s.admit(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(admitStatus(err), gin.H{"message": limitMessage(err), "usage": allowance})
		return
	}
	c.Header("X-Usage-Remaining", strconv.FormatInt(allowance.Remaining, 10))

	v, err := s.pipeline.ClassifyWith(c.Request.Context(), engine, req.Statement)
	if err != nil {
		s.logger.Warn("api classification failed", zap.Error(err))
		if a := s.release(c.Request.Context(), sessionID(c)); a.Ceiling > 0 {
			c.Header("X-Usage-Remaining", strconv.FormatInt(a.Remaining, 10))
		}
		c.JSON(http.StatusBadGateway, gin.H{"message": fmt.Sprintf("classification failed, resubmit to retry: %v", err)})
		return
	}

	c.JSON(http.StatusOK, v)
}

func (s *Server) laws(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.Rules().Detector().Laws())
}

func (s *Server) rules(c *gin.Context) {
	c.JSON(http.StatusOK, s.pipeline.Rules().Rules())
}

func (s *Server) usage(c *gin.Context) {
	ctx := c.Request.Context()

	daily, err := s.daily.Peek(ctx, usage.GlobalSubject)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
		return
	}
	session, err := s.session.Peek(ctx, sessionID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, UsageResponse{Daily: daily, Session: session})
}

func (s *Server) healthz(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"engine": s.pipeline.Engine(),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	if h := s.pipeline.Hosted(); h != nil {
		status["provider"] = h.ProviderName()
	}
	c.JSON(http.StatusOK, status)
}

func limitMessage(err error) string {
	var le *limitError
	if errors.As(err, &le) {
		return le.Error()
	}
	return "Usage tracking is unavailable right now. Please try again later."
}
