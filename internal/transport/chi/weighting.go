package chi

import (
	"encoding/json"
	"net/http"

	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
)

type weightingResponse struct {
	Data             domweighting.Settings `json:"data"`
	WeightableFields domweighting.Catalog  `json:"weightable_fields"`
}

type saveWeightingResponse struct {
	Success bool                  `json:"success"`
	Data    domweighting.Settings `json:"data"`
}

// GetWeighting handles GET /elasticpress/v1/weighting.
func (s *Server) GetWeighting(w http.ResponseWriter, r *http.Request) {
	settings, err := s.weighting.Get(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, weightingResponse{
		Data:             settings,
		WeightableFields: s.weighting.Catalog(),
	})
}

// SaveWeighting handles POST /elasticpress/v1/weighting. The body replaces
// the whole configuration; the response carries the stored form.
func (s *Server) SaveWeighting(w http.ResponseWriter, r *http.Request) {
	var req domweighting.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	saved, err := s.weighting.Save(r.Context(), req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveWeightingResponse{Success: true, Data: saved})
}
