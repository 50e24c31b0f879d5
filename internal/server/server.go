package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Alias1177/insights/internal/insights"
	"github.com/Alias1177/insights/internal/metrics"
	"github.com/Alias1177/insights/internal/model"
)

// InsightsService is the aggregator surface exposed over HTTP
type InsightsService interface {
	Generate(ctx context.Context, symbol string, opts model.Options) (*model.InsightsResult, error)
	RunLab(ctx context.Context, symbol string, opts model.Options) (*model.LabResult, error)
}

// Options configures the router
type Options struct {
	Defaults       model.Options // applied before query parameters
	AllowOrigins   []string
	RatePerSecond  float64 // per client IP, 0 disables limiting
	RateBurst      int
	RequestTimeout time.Duration
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Handler serves insights and lab results
type Handler struct {
	svc  InsightsService
	opts Options
}

// NewRouter builds the gin engine with every route registered
func NewRouter(svc InsightsService, m *metrics.Metrics, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(RecoveryMiddleware, ZerologMiddleware())
	if len(opts.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowOrigins,
			AllowMethods:  []string{"GET", "HEAD", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	h := &Handler{svc: svc, opts: opts}
	api := r.Group("/api")
	if opts.RatePerSecond > 0 {
		api.Use(RateLimiter(opts.RatePerSecond, opts.RateBurst))
	}
	h.RegisterRoutes(api)
	return r
}

// RegisterRoutes sets up the insights routes under router
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/insights/:symbol", h.GetInsights)
	router.GET("/lab/:symbol", h.GetLab)
}

// GetInsights runs the full pipeline for a symbol
func (h *Handler) GetInsights(c *gin.Context) {
	opts, err := h.parseOptions(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	res, err := h.svc.Generate(ctx, c.Param("symbol"), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Data: res})
}

// GetLab compares the stop-loss/take-profit strategy with buy-and-hold
func (h *Handler) GetLab(c *gin.Context) {
	opts, err := h.parseOptions(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	lab, err := h.svc.RunLab(ctx, c.Param("symbol"), opts)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Data: lab})
}

func (h *Handler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.opts.RequestTimeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
	}
	return context.WithCancel(c.Request.Context())
}

// parseOptions overlays query parameters on the configured defaults
func (h *Handler) parseOptions(c *gin.Context) (model.Options, error) {
	opts := h.opts.Defaults

	if v := c.Query("range"); v != "" {
		opts.Range = strings.ToLower(v)
	}
	if v := c.Query("interval"); v != "" {
		opts.Interval = strings.ToLower(v)
	}
	if v := c.Query("indicator"); v != "" {
		opts.Indicator = model.Indicator(v)
	}
	if v := c.Query("model"); v != "" {
		opts.ForecastModel = model.ForecastModel(v)
	}

	var err error
	if v := c.Query("horizon"); v != "" {
		if opts.ForecastHorizon, err = strconv.Atoi(v); err != nil {
			return opts, invalidParam("horizon", v)
		}
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"capital", &opts.InitialCapital},
		{"stopLoss", &opts.StopLossPct},
		{"takeProfit", &opts.TakeProfitPct},
	}
	for _, f := range floats {
		if v := c.Query(f.name); v != "" {
			if *f.dst, err = strconv.ParseFloat(v, 64); err != nil || !model.IsFinite(*f.dst) {
				return opts, invalidParam(f.name, v)
			}
		}
	}
	return opts, nil
}

func invalidParam(name, value string) error {
	return fmt.Errorf("%w: invalid %s parameter %q", insights.ErrInvalidInput, name, value)
}

// handleError maps pipeline errors to status codes
func (h *Handler) handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, insights.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, insights.ErrNoHistory):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.Error(err)
	c.JSON(status, response{Success: false, Message: http.StatusText(status), Error: err.Error()})
}
