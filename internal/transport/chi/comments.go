package chi

import (
	"encoding/json"
	"net/http"
	"time"

	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
)

// maxIngestBatch caps the comments accepted by one ingest request.
const maxIngestBatch = 1000

// commentItem is one comment in an ingest request.
type commentItem struct {
	ID          int64     `json:"id"`
	PostID      int64     `json:"post_id"`
	PostType    string    `json:"post_type"`
	PostStatus  string    `json:"post_status"`
	Type        string    `json:"type"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"author_email"`
	Content     string    `json:"content"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

type ingestRequest struct {
	Comments []commentItem `json:"comments"`
}

type ingestResponse struct {
	Saved   int `json:"saved"`
	Indexed int `json:"indexed"`
}

// SearchComments handles GET /elasticpress/v1/comments?s=<term>.
// The body is an object keyed by comment ID; no matches yield {}.
func (s *Server) SearchComments(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("s")
	if term == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "parameter s is required")
		return
	}

	qc, err := s.queryContext(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	res, err := s.comments.Search(r.Context(), qc, term)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	out := make(map[string]domcomment.Hit, len(res.Hits))
	for _, h := range res.Hits {
		out[h.ID] = h
	}
	writeJSON(w, http.StatusOK, out)
}

// IngestComments handles POST /elasticpress/v1/comments.
func (s *Server) IngestComments(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Comments) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "comments must not be empty")
		return
	}
	if len(req.Comments) > maxIngestBatch {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "too many comments in one request")
		return
	}

	comments := make([]domcomment.Comment, len(req.Comments))
	for i, c := range req.Comments {
		comments[i] = domcomment.Comment{
			ID:          c.ID,
			PostID:      c.PostID,
			PostType:    c.PostType,
			PostStatus:  c.PostStatus,
			Type:        c.Type,
			Author:      c.Author,
			AuthorEmail: c.AuthorEmail,
			Content:     c.Content,
			Status:      domcomment.Status(c.Status),
			Date:        c.Date,
		}
	}

	indexed, err := s.comments.Ingest(r.Context(), comments...)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Saved: len(comments), Indexed: indexed})
}
