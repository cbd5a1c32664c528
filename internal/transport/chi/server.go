package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
	domfeature "github.com/kailas-cloud/searchgate/internal/domain/feature"
	"github.com/kailas-cloud/searchgate/internal/domain/query"
	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
	commentsuc "github.com/kailas-cloud/searchgate/internal/usecase/comments"
	featureuc "github.com/kailas-cloud/searchgate/internal/usecase/feature"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
)

// APIPrefix is the namespace of every plugin route.
const APIPrefix = "/elasticpress/v1"

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeAlreadyExists      ErrorCode = "already_exists"
	ErrorCodeFeatureUnavailable ErrorCode = "feature_unavailable"
	ErrorCodeRateLimited        ErrorCode = "rate_limited"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CommentSearcher runs comment searches and ingests comments.
type CommentSearcher interface {
	Search(ctx context.Context, qc query.Context, term string) (commentsuc.Result, error)
	Ingest(ctx context.Context, comments ...domcomment.Comment) (int, error)
}

// FeatureManager lists and toggles features.
type FeatureManager interface {
	List(ctx context.Context) ([]domfeature.Toggle, error)
	SetActive(ctx context.Context, slug string, active bool) (featureuc.Activation, error)
}

// WeightingStore reads and replaces weighting settings.
type WeightingStore interface {
	Catalog() domweighting.Catalog
	Get(ctx context.Context) (domweighting.Settings, error)
	Save(ctx context.Context, s domweighting.Settings) (domweighting.Settings, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// ActivateHook runs after a feature that needs a reindex was switched on.
type ActivateHook func(ctx context.Context) error

// Integration holds the host-level integration overrides applied to every query.
type Integration struct {
	Admin bool
	AJAX  bool
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the plugin REST API.
type Server struct {
	comments      CommentSearcher
	features      FeatureManager
	weighting     WeightingStore
	health        HealthChecker
	integration   Integration
	onActivate    map[string]ActivateHook
	limiter       *RateLimiter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. onActivate may be nil.
func NewServer(
	comments CommentSearcher,
	features FeatureManager,
	weighting WeightingStore,
	health HealthChecker,
	integration Integration,
	onActivate map[string]ActivateHook,
	logger *zap.Logger,
) *Server {
	s := &Server{
		comments:    comments,
		features:    features,
		weighting:   weighting,
		health:      health,
		integration: integration,
		onActivate:  onActivate,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrInvalidWeighting, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrFeatureUnavailable, http.StatusConflict, ErrorCodeFeatureUnavailable),
	}
	return s
}

// WithRateLimiter throttles the public comment search.
func (s *Server) WithRateLimiter(l *RateLimiter) *Server {
	s.limiter = l
	return s
}

// Routes mounts the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Route(APIPrefix, func(r chi.Router) {
		if s.limiter != nil {
			r.With(s.limiter.Middleware).Get("/comments", s.SearchComments)
		} else {
			r.Get("/comments", s.SearchComments)
		}
		r.Post("/comments", s.IngestComments)
		r.Get("/features", s.ListFeatures)
		r.Post("/features/{slug}", s.SetFeature)
		r.Get("/weighting", s.GetWeighting)
		r.Post("/weighting", s.SaveWeighting)
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors carry their detail since it names the offending input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidWeighting) || errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrFeatureUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
