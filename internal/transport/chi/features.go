package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	domfeature "github.com/kailas-cloud/searchgate/internal/domain/feature"
	"github.com/kailas-cloud/searchgate/internal/logger"
)

type requirementsJSON struct {
	Code     int      `json:"code"`
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

type featureJSON struct {
	Slug            string           `json:"slug"`
	Title           string           `json:"title"`
	Summary         string           `json:"summary"`
	Active          bool             `json:"active"`
	RequiresReindex bool             `json:"requires_reindex"`
	Requirements    requirementsJSON `json:"requirements_status"`
}

type setFeatureRequest struct {
	Active *bool `json:"active"`
}

type setFeatureResponse struct {
	Feature         featureJSON `json:"feature"`
	ReindexRequired bool        `json:"reindex_required"`
	Reindexed       bool        `json:"reindexed"`
}

// ListFeatures handles GET /elasticpress/v1/features.
func (s *Server) ListFeatures(w http.ResponseWriter, r *http.Request) {
	toggles, err := s.features.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]featureJSON, len(toggles))
	for i, t := range toggles {
		items[i] = toggleToJSON(t)
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": items})
}

// SetFeature handles POST /elasticpress/v1/features/{slug}.
func (s *Server) SetFeature(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := domfeature.ValidateSlug(slug); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return
	}

	var req setFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Active == nil {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "active is required")
		return
	}

	act, err := s.features.SetActive(r.Context(), slug, *req.Active)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := setFeatureResponse{
		Feature:         toggleToJSON(act.Toggle),
		ReindexRequired: act.ReindexRequired,
	}
	if hook, ok := s.onActivate[slug]; ok && act.ReindexRequired {
		ctx := logger.WithFields(r.Context(), zap.String("feature", slug))
		if err := hook(ctx); err != nil {
			logger.FromContext(ctx).Error("feature activation hook failed", zap.Error(err))
		} else {
			resp.Reindexed = true
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func toggleToJSON(t domfeature.Toggle) featureJSON {
	msgs := t.Requirements.Messages
	if msgs == nil {
		msgs = []string{}
	}
	return featureJSON{
		Slug:            t.Slug,
		Title:           t.Title,
		Summary:         t.Summary,
		Active:          t.Enabled,
		RequiresReindex: t.RequiresReindex,
		Requirements: requirementsJSON{
			Code:     int(t.Requirements.Code),
			Status:   t.Requirements.Code.String(),
			Messages: msgs,
		},
	}
}
