package comment

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status is the moderation state of a comment.
type Status string

const (
	// StatusApproved is a published comment.
	StatusApproved Status = "approve"
	// StatusHold is awaiting moderation.
	StatusHold Status = "hold"
	// StatusSpam is marked as spam.
	StatusSpam Status = "spam"
	// StatusTrash is deleted.
	StatusTrash Status = "trash"
)

// IsValid checks the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusApproved, StatusHold, StatusSpam, StatusTrash:
		return true
	}
	return false
}

// Comment is a comment together with the fields of its parent post that
// queries filter on.
type Comment struct {
	ID          int64
	PostID      int64
	PostType    string
	PostStatus  string
	Type        string
	Author      string
	AuthorEmail string
	Content     string
	Status      Status
	Date        time.Time
}

// DefaultNumber is the page size of a comment search.
const DefaultNumber = 5

// Query describes a comment lookup, in either backend.
type Query struct {
	Status     Status
	Search     string
	PostTypes  []string
	PostStatus string
	Number     int
}

// NewSearchQuery returns the default search arguments: approved comments on
// published posts of the given types, first DefaultNumber matches.
func NewSearchQuery(search string, postTypes []string) Query {
	return Query{
		Status:     StatusApproved,
		Search:     search,
		PostTypes:  postTypes,
		PostStatus: "publish",
		Number:     DefaultNumber,
	}
}

// HasSearchTerm reports whether the query carries a non-blank search term.
func (q Query) HasSearchTerm() bool {
	return strings.TrimSpace(q.Search) != ""
}

// Validate checks the query can be executed.
func (q Query) Validate() error {
	if q.Status != "" && !q.Status.IsValid() {
		return fmt.Errorf("invalid comment status %q", q.Status)
	}
	if q.Number <= 0 {
		return fmt.Errorf("number must be positive, got %d", q.Number)
	}
	return nil
}

// ArgsFilter lets the host rewrite search arguments before execution.
type ArgsFilter func(Query) Query

// Hit is one search result as returned by the comments endpoint.
type Hit struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Link    string `json:"link"`
}

// Link builds the permalink of a comment: the post permalink plus a
// comment anchor.
func Link(siteURL string, c Comment) string {
	base := strings.TrimRight(siteURL, "/")
	return fmt.Sprintf("%s/?p=%d#comment-%d", base, c.PostID, c.ID)
}

// ToHit converts a comment into its endpoint representation.
func ToHit(siteURL string, c Comment) Hit {
	return Hit{
		ID:      strconv.FormatInt(c.ID, 10),
		Content: c.Content,
		Link:    Link(siteURL, c),
	}
}
