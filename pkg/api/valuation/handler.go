package valuation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"dcf_valuation/pkg/config"
	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/logger"
	"dcf_valuation/pkg/core/mna"
	"dcf_valuation/pkg/core/projection"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/sensitivity"
	"dcf_valuation/pkg/core/sweep"
	coreValuation "dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/report"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type Handler struct {
	Config config.Config
	Logger *zap.SugaredLogger
}

func NewHandler(cfg config.Config, l *zap.SugaredLogger) *Handler {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &Handler{Config: cfg, Logger: l}
}

// Router builds the gin engine with every valuation route registered.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(h.requestScope)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	dcf := router.Group("/api/dcf")
	dcf.POST("/project", h.project)
	dcf.POST("/value", h.value)
	dcf.POST("/sensitivity", h.sensitivity)
	dcf.POST("/reverse", h.reverse)
	dcf.POST("/reverse/sensitivity", h.reverseSensitivity)

	router.POST("/api/mna/football-field", h.footballField)

	return router
}

// requestScope tags the request with an id and a logger carrying it.
func (h *Handler) requestScope(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.New().String()
	}
	c.Header(RequestIDHeader, id)

	l := h.Logger.With("request_id", id, "route", c.FullPath())
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))

	start := time.Now()
	c.Next()
	l.Infow("request complete",
		"status", c.Writer.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (h *Handler) sweepOptions(c *gin.Context) []sweep.Option {
	return []sweep.Option{
		sweep.WithParallelism(h.Config.Parallelism),
		sweep.WithLogger(logger.FromContext(c.Request.Context())),
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, assumption.ErrInvalidInput), errors.Is(err, assumption.ErrUnknownVariable):
		return http.StatusBadRequest
	case errors.Is(err, coreValuation.ErrDivergentTerminalValue),
		errors.Is(err, reverse.ErrNoConvergence),
		errors.Is(err, mna.ErrNoTransactions):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusFor(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	l := logger.FromContext(c.Request.Context())
	if code >= http.StatusInternalServerError {
		l.Errorw("request failed", "error", err)
	} else {
		l.Warnw("request rejected", "error", err, "status", code)
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func bind(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, http.StatusBadRequest)
		return false
	}
	return true
}

var contentTypes = map[report.Format]string{
	report.Markdown: "text/markdown; charset=utf-8",
	report.HTML:     "text/html; charset=utf-8",
	report.CSV:      "text/csv; charset=utf-8",
}

// respond writes body as JSON, or through render when ?format= is given.
func respond(c *gin.Context, body interface{}, render func(w io.Writer, f report.Format) error) {
	raw := c.Query("format")
	if raw == "" || raw == "json" {
		c.JSON(http.StatusOK, body)
		return
	}
	f, err := report.ParseFormat(raw)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	var buf bytes.Buffer
	if err := render(&buf, f); err != nil {
		returnErrorJson(err, c)
		return
	}
	c.Data(http.StatusOK, contentTypes[f], buf.Bytes())
}

func (h *Handler) project(c *gin.Context) {
	a := assumption.NewAssumptionSet()
	if !bind(c, &a) {
		return
	}
	res, err := projection.Project(a)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	respond(c, res, func(w io.Writer, f report.Format) error {
		return report.Projection(w, f, res)
	})
}

type valueResponse struct {
	Result       coreValuation.Result        `json:"result"`
	EquityBridge *coreValuation.EquityBridge `json:"equity_bridge,omitempty"`
}

func (h *Handler) value(c *gin.Context) {
	s := config.NewScenario()
	if !bind(c, &s) {
		return
	}
	if err := s.Resolve(); err != nil {
		returnErrorJson(err, c)
		return
	}
	res, err := coreValuation.Value(s.Assumptions)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	bridge, err := s.Bridge(res.EnterpriseValue)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	logger.FromContext(c.Request.Context()).Infow("valued scenario",
		"scenario", s.Name,
		"enterprise_value", res.EnterpriseValue,
	)
	respond(c, valueResponse{Result: res, EquityBridge: bridge}, func(w io.Writer, f report.Format) error {
		return report.Valuation(w, f, res, bridge)
	})
}

type sensitivityRequest struct {
	config.Scenario
	Specs []sensitivity.Spec `json:"specs"`
}

func (h *Handler) sensitivity(c *gin.Context) {
	req := sensitivityRequest{Scenario: config.NewScenario()}
	if !bind(c, &req) {
		return
	}
	if err := req.Resolve(); err != nil {
		returnErrorJson(err, c)
		return
	}
	specs := req.Specs
	if len(specs) == 0 {
		var err error
		if specs, err = h.Config.SensitivitySpecs(); err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	tables, err := sensitivity.RunAll(req.Assumptions, specs, h.sweepOptions(c)...)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	respond(c, tables, func(w io.Writer, f report.Format) error {
		return report.Sensitivity(w, f, tables)
	})
}

func (h *Handler) newQuery() reverse.Query {
	q := reverse.NewQuery()
	q.Range = h.Config.SearchRange
	return q
}

func (h *Handler) reverse(c *gin.Context) {
	q := h.newQuery()
	if !bind(c, &q) {
		return
	}
	sol, err := reverse.Solve(q)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	respond(c, sol, func(w io.Writer, f report.Format) error {
		return report.ReverseSolution(w, f, sol)
	})
}

type reverseSensitivityRequest struct {
	reverse.Query
	Specs []reverse.Spec `json:"specs"`
}

func (h *Handler) reverseSensitivity(c *gin.Context) {
	req := reverseSensitivityRequest{Query: h.newQuery()}
	if !bind(c, &req) {
		return
	}
	specs := req.Specs
	if len(specs) == 0 {
		var err error
		if specs, err = h.Config.ReverseSensitivitySpecs(); err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	tables, err := reverse.RunSensitivityAll(req.Query, specs, h.sweepOptions(c)...)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	respond(c, tables, func(w io.Writer, f report.Format) error {
		return report.ReverseSensitivity(w, f, tables)
	})
}

func (h *Handler) footballField(c *gin.Context) {
	var req config.MNA
	if !bind(c, &req) {
		return
	}
	rows, err := req.Model().FootballField(req.Transactions)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	respond(c, rows, func(w io.Writer, f report.Format) error {
		return report.FootballField(w, f, rows)
	})
}
