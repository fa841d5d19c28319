package api

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xtding233/craps-backend/internal/craps"
	"github.com/xtding233/craps-backend/internal/history"
	"github.com/xtding233/craps-backend/internal/metrics"
	"github.com/xtding233/craps-backend/internal/service"
	"github.com/xtding233/craps-backend/internal/sim"
	"github.com/xtding233/craps-backend/internal/tablecfg"
)

const tracerName = "github.com/xtding233/craps-backend/internal/api"

type Server struct {
	app    *fiber.App
	runner *service.Runner
	log    *zap.Logger
}

// NewServer registers every route. rec may be nil to skip /metrics.
func NewServer(runner *service.Runner, rec *metrics.Recorder, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		runner: runner,
		log:    log,
	}

	s.app.Use(recover.New())
	s.app.Use(s.traced)

	s.app.Get("/healthz", s.health)
	if rec != nil {
		s.app.Get("/metrics", adaptor.HTTPHandler(rec.Handler()))
	}
	s.app.Get("/tables/:table/catalog", s.catalog)
	s.app.Post("/simulate", s.simulate)

	h := s.app.Group("/history")
	h.Get("/sessions", s.sessions)
	h.Get("/sessions/:id/rolls", s.rolls)
	h.Post("/sessions/:id/replay", s.replay)
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func (s *Server) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }

// traced wraps each request in a span and logs it with the trace id.
func (s *Server) traced(c *fiber.Ctx) error {
	ctx, span := otel.Tracer(tracerName).Start(c.UserContext(), c.Method()+" "+c.Path())
	defer span.End()
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	span.SetAttributes(attribute.Int("http.status_code", status))
	s.log.Debug("request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", status),
		zap.Duration("took", time.Since(start)),
		zap.String("trace_id", trace.SpanFromContext(ctx).SpanContext().TraceID().String()))
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.runner.History != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 500*time.Millisecond)
		defer cancel()
		if err := s.runner.History.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) catalog(c *fiber.Ctx) error {
	o, err := queryOverrides(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	table := c.Params("table")
	raw, rules, err := s.runner.Rules.Resolve(table, c.Query("variant"), o)
	if err != nil {
		return err
	}
	cat, err := craps.NewCatalog(rules)
	if err != nil {
		return err
	}
	v := RenderCatalog(cat)
	v.Table = table
	v.Version = raw.Version
	return c.JSON(v)
}

func (s *Server) simulate(c *fiber.Ctx) error {
	var job service.Job
	if err := c.BodyParser(&job); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	rep, err := s.runner.Simulate(c.UserContext(), job)
	if err != nil {
		return err
	}
	return c.JSON(rep)
}

func (s *Server) sessions(c *fiber.Ctx) error {
	if s.runner.History == nil {
		return service.ErrNoHistory
	}
	limit := c.QueryInt("limit", 50)
	out, err := s.runner.History.Sessions(c.UserContext(), c.Query("run"), limit)
	if err != nil {
		return err
	}
	if out == nil {
		out = []history.Session{}
	}
	return c.JSON(fiber.Map{"sessions": out})
}

func (s *Server) rolls(c *fiber.Ctx) error {
	if s.runner.History == nil {
		return service.ErrNoHistory
	}
	rolls, err := s.runner.History.Rolls(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if rolls == nil {
		rolls = []craps.Roll{}
	}
	return c.JSON(fiber.Map{"session": c.Params("id"), "rolls": rolls})
}

func (s *Server) replay(c *fiber.Ctx) error {
	res, err := s.runner.Replay(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	end := make(map[string]int64, len(res.End))
	for p, b := range res.End {
		end[string(p)] = int64(b)
	}
	return c.JSON(fiber.Map{
		"session":     res.ID,
		"rolls":       res.Rolls,
		"points_made": res.PointsMade,
		"seven_outs":  res.SevenOuts,
		"net":         int64(res.Net()),
		"balances":    end,
	})
}

// errorHandler maps domain errors onto status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, service.ErrNoHistory):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, history.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, service.ErrBadJob),
		errors.Is(err, service.ErrTooManySessions),
		errors.Is(err, tablecfg.ErrBadName),
		errors.Is(err, craps.ErrHouseRules),
		errors.Is(err, tablecfg.ErrInvalidConfig):
		code = fiber.StatusBadRequest
	case errors.Is(err, sim.ErrUnknownStrategy), errors.Is(err, sim.ErrNoStrategies):
		code = fiber.StatusBadRequest
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// queryOverrides reads optional numeric overrides from the query string.
func queryOverrides(c *fiber.Ctx) (tablecfg.Overrides, error) {
	var (
		o   tablecfg.Overrides
		err error
	)
	if o.TableMinimum, err = queryInt64(c, "min"); err != nil {
		return o, err
	}
	if o.TableMaximum, err = queryInt64(c, "max"); err != nil {
		return o, err
	}
	if o.Unit, err = queryInt64(c, "unit"); err != nil {
		return o, err
	}
	if o.VigPercent, err = queryInt64(c, "vig"); err != nil {
		return o, err
	}
	if o.OddsMultiple, err = queryInt64(c, "odds"); err != nil {
		return o, err
	}
	if v := c.Query("leave_up"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, errors.New("invalid leave_up")
		}
		o.LeaveUp = &b
	}
	return o, nil
}

func queryInt64(c *fiber.Ctx, key string) (*int64, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	return &v, nil
}
