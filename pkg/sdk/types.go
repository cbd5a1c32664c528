package searchgate

import (
	"time"

	"github.com/kailas-cloud/searchgate/internal/domain/weighting"
)

// Weighting types shared with the service.
type (
	// Settings is the full weighting document: meta mode plus per post type weights.
	Settings = weighting.Settings
	// Configuration maps post type to its field weights.
	Configuration = weighting.Configuration
	// Fields maps field key to its weight.
	Fields = weighting.Fields
	// FieldWeight is the weight of one field and whether it is searched.
	FieldWeight = weighting.FieldWeight
	// MetaMode controls how metadata fields are weighted.
	MetaMode = weighting.MetaMode
	// Catalog lists the weightable fields per post type.
	Catalog = weighting.Catalog
)

// Meta modes.
const (
	MetaModeAuto   = weighting.MetaModeAuto
	MetaModeManual = weighting.MetaModeManual
)

// WeightingState is the weighting screen payload: stored settings and the
// fields that can be weighted.
type WeightingState struct {
	Settings Settings
	Catalog  Catalog
}

// CommentHit is one comment search result.
type CommentHit struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Link    string `json:"link"`
}

// Comment is a comment sent for ingestion.
type Comment struct {
	ID          int64  `json:"id"`
	PostID      int64  `json:"post_id"`
	PostType    string `json:"post_type"`
	PostStatus  string `json:"post_status"`
	Type        string `json:"type,omitempty"`
	Author      string `json:"author"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	// Date defaults to the ingestion time when zero.
	Date time.Time `json:"date"`
}

// IngestResult reports how many comments were stored and indexed.
type IngestResult struct {
	Saved   int `json:"saved"`
	Indexed int `json:"indexed"`
}

// RequirementsStatus tells whether a feature can be enabled.
type RequirementsStatus struct {
	Code     int      `json:"code"`
	Status   string   `json:"status"`
	Messages []string `json:"messages"`
}

// Feature is a feature toggle.
type Feature struct {
	Slug            string             `json:"slug"`
	Title           string             `json:"title"`
	Summary         string             `json:"summary"`
	Active          bool               `json:"active"`
	RequiresReindex bool               `json:"requires_reindex"`
	Requirements    RequirementsStatus `json:"requirements_status"`
}

// FeatureActivation is the outcome of SetFeature.
type FeatureActivation struct {
	Feature         Feature `json:"feature"`
	ReindexRequired bool    `json:"reindex_required"`
	Reindexed       bool    `json:"reindexed"`
}
