package rest

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"search-gateway/domain"
	"search-gateway/logger"
	"search-gateway/usecase"
	appOtel "search-gateway/utils/otel"
)

type Searcher interface {
	Execute(ctx context.Context, query domain.SearchQuery) ([]domain.ScoredDocument, error)
}

type KeywordLister interface {
	Execute(ctx context.Context) ([]string, error)
}

type HealthChecker interface {
	Execute(ctx context.Context) (usecase.HealthReport, error)
}

type Admitter interface {
	Admit(ctx context.Context, identity string, limit int64, window time.Duration) (bool, error)
}

// RateLimitPolicy is the per-user quota applied to searches.
type RateLimitPolicy struct {
	Limit    int64
	Window   time.Duration
	FailOpen bool
}

// Handler contains all HTTP handlers of the search gateway.
type Handler struct {
	search   Searcher
	keywords KeywordLister
	health   HealthChecker
	governor Admitter
	limits   RateLimitPolicy
	log      *logger.ContextLogger
}

func NewHandler(search Searcher, keywords KeywordLister, health HealthChecker, governor Admitter, limits RateLimitPolicy, log *slog.Logger) *Handler {
	return &Handler{
		search:   search,
		keywords: keywords,
		health:   health,
		governor: governor,
		limits:   limits,
		log:      logger.NewContextLogger(log),
	}
}

// Register mounts the routes on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/search", h.Search)
	e.GET("/keywords", h.Keywords)
}

type HealthResponse struct {
	Status        string `json:"status"`
	Elasticsearch string `json:"elasticsearch"`
	Redis         string `json:"redis"`
	Engine        string `json:"engine"`
}

type UnhealthyResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type SearchResponse struct {
	Results    []domain.ScoredDocument `json:"results"`
	Query      string                  `json:"query"`
	TopK       int                     `json:"top_k"`
	Threshold  float64                 `json:"threshold"`
	SearchTime float64                 `json:"search_time"`
}

// Health reports whether both the search engine and Redis answer.
func (h *Handler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	report, err := h.health.Execute(ctx)
	if err != nil {
		h.log.WithContext(ctx).ErrorContext(ctx, "health check failed", "error", err)
		return c.JSON(http.StatusInternalServerError, UnhealthyResponse{Status: "unhealthy", Error: err.Error()})
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		Elasticsearch: "connected",
		Redis:         "connected",
		Engine:        report.Engine,
	})
}

// Search checks the caller's quota before validating the remaining
// parameters, so malformed requests still count against it.
func (h *Handler) Search(c echo.Context) error {
	req := c.Request()
	ctx := req.Context()

	userID := c.QueryParam("user_id")
	if userID == "" {
		return domain.NewValidationError("user_id", "user_id is required")
	}
	ctx = logger.WithSearchUserID(ctx, userID)
	c.SetRequest(req.WithContext(ctx))

	if err := h.admit(ctx, userID); err != nil {
		return err
	}

	topK, err := parseTopK(c.QueryParam("top_k"))
	if err != nil {
		return err
	}
	threshold, err := parseThreshold(c.QueryParam("threshold"))
	if err != nil {
		return err
	}

	text := c.QueryParam("text")
	query, err := domain.NewSearchQuery(text, topK, threshold)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := h.search.Execute(ctx, query)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	h.log.WithContext(ctx).InfoContext(ctx, "search ok", "query", text, "count", len(results), "duration_ms", elapsed.Milliseconds())

	return c.JSON(http.StatusOK, SearchResponse{
		Results:    results,
		Query:      query.Text(),
		TopK:       query.TopK(),
		Threshold:  query.Threshold(),
		SearchTime: elapsed.Seconds(),
	})
}

func (h *Handler) admit(ctx context.Context, userID string) error {
	allowed, err := h.governor.Admit(ctx, userID, h.limits.Limit, h.limits.Window)
	if err != nil {
		if h.limits.FailOpen {
			h.log.WithContext(ctx).WarnContext(ctx, "rate limit store unavailable, admitting request", "error", err)
			return nil
		}
		return err
	}
	if !allowed {
		appOtel.RecordRateLimited(ctx)
		return &domain.RateLimitError{Identity: userID, Limit: h.limits.Limit}
	}
	return nil
}

// Keywords lists the most frequent article keywords.
func (h *Handler) Keywords(c echo.Context) error {
	keywords, err := h.keywords.Execute(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, keywords)
}

func parseTopK(raw string) (int, error) {
	if raw == "" {
		return domain.DefaultTopK, nil
	}
	topK, err := strconv.Atoi(raw)
	if err != nil || topK <= 0 {
		return 0, domain.NewValidationError("top_k", "top_k must be a positive integer")
	}
	return topK, nil
}

func parseThreshold(raw string) (float64, error) {
	if raw == "" {
		return domain.DefaultThreshold, nil
	}
	threshold, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(threshold) || threshold < 0 || threshold >= 1 {
		return 0, domain.NewValidationError("threshold", "threshold must be a number in [0, 1)")
	}
	return threshold, nil
}
