// Package commentindex is the search-backed comment path: a bleve full-text
// index of comments and the fields of their parent posts.
package commentindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
)

const batchSize = 1000

// Index wraps a bleve index. Safe for concurrent use.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// Open opens the index at path, creating it if missing.
// An empty path creates an in-memory index.
func Open(path string) (*Index, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory comment index: %w", err)
		}
		return &Index{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(path, buildMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open comment index %s: %w", path, err)
	}
	return &Index{index: idx}, nil
}

// buildMapping indexes text fields with the standard analyzer and filter
// fields as exact keywords.
func buildMapping() *mapping.IndexMappingImpl {
	text := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "standard"
		m.Store = true
		m.Index = true
		return m
	}
	keyword := func() *mapping.FieldMapping {
		m := bleve.NewTextFieldMapping()
		m.Analyzer = "keyword"
		m.Store = true
		m.Index = true
		return m
	}
	numeric := func() *mapping.FieldMapping {
		m := bleve.NewNumericFieldMapping()
		m.Store = true
		m.Index = true
		return m
	}

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", text())
	doc.AddFieldMappingsAt("author", text())
	doc.AddFieldMappingsAt("author_email", keyword())
	doc.AddFieldMappingsAt("status", keyword())
	doc.AddFieldMappingsAt("type", keyword())
	doc.AddFieldMappingsAt("post_type", keyword())
	doc.AddFieldMappingsAt("post_status", keyword())
	doc.AddFieldMappingsAt("post_id", numeric())
	doc.AddFieldMappingsAt("created_at", numeric())

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

// Index adds or replaces comments in batches.
func (x *Index) Index(ctx context.Context, comments ...domcomment.Comment) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	batch := x.index.NewBatch()
	for i, c := range comments {
		if i%batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := batch.Index(docID(c.ID), toDocument(c)); err != nil {
			return fmt.Errorf("batch comment %d: %w", c.ID, err)
		}
		if batch.Size() >= batchSize {
			if err := x.index.Batch(batch); err != nil {
				return fmt.Errorf("execute batch: %w", err)
			}
			batch = x.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := x.index.Batch(batch); err != nil {
			return fmt.Errorf("execute final batch: %w", err)
		}
	}
	return nil
}

// Delete removes a comment from the index.
func (x *Index) Delete(_ context.Context, id int64) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.index.Delete(docID(id)); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return nil
}

// Count returns the number of indexed comments.
func (x *Index) Count() (uint64, error) {
	n, err := x.index.DocCount()
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return n, nil
}

// Search runs q against the index, best match first.
func (x *Index) Search(ctx context.Context, q domcomment.Query) ([]domcomment.Comment, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("comment index search: %w", err)
	}

	req := bleve.NewSearchRequestOptions(buildQuery(q), q.Number, 0, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"-_score", "-created_at"})

	x.mu.RLock()
	res, err := x.index.SearchInContext(ctx, req)
	x.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("comment index search: %w", err)
	}

	out := make([]domcomment.Comment, 0, len(res.Hits))
	for _, hit := range res.Hits {
		c, err := fromHit(hit.ID, hit.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Close releases the index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.index.Close()
}

func buildQuery(q domcomment.Query) query.Query {
	var must []query.Query

	if q.HasSearchTerm() {
		content := bleve.NewMatchQuery(q.Search)
		content.SetField("content")
		author := bleve.NewMatchQuery(q.Search)
		author.SetField("author")
		must = append(must, bleve.NewDisjunctionQuery(content, author))
	}
	if q.Status != "" {
		must = append(must, termQuery("status", string(q.Status)))
	}
	if q.PostStatus != "" {
		must = append(must, termQuery("post_status", q.PostStatus))
	}
	if len(q.PostTypes) > 0 {
		types := make([]query.Query, len(q.PostTypes))
		for i, pt := range q.PostTypes {
			types[i] = termQuery("post_type", pt)
		}
		must = append(must, bleve.NewDisjunctionQuery(types...))
	}

	if len(must) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(must...)
}

func termQuery(field, term string) query.Query {
	tq := bleve.NewTermQuery(term)
	tq.SetField(field)
	return tq
}

func docID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toDocument(c domcomment.Comment) map[string]any {
	typ := c.Type
	if typ == "" {
		typ = "comment"
	}
	return map[string]any{
		"content":      c.Content,
		"author":       c.Author,
		"author_email": c.AuthorEmail,
		"status":       string(c.Status),
		"type":         typ,
		"post_type":    c.PostType,
		"post_status":  c.PostStatus,
		"post_id":      float64(c.PostID),
		"created_at":   float64(c.Date.UnixMilli()),
	}
}

func fromHit(id string, fields map[string]any) (domcomment.Comment, error) {
	cid, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domcomment.Comment{}, fmt.Errorf("parse comment id %q: %w", id, err)
	}
	str := func(k string) string {
		s, _ := fields[k].(string)
		return s
	}
	num := func(k string) int64 {
		f, _ := fields[k].(float64)
		return int64(f)
	}
	return domcomment.Comment{
		ID:          cid,
		PostID:      num("post_id"),
		PostType:    str("post_type"),
		PostStatus:  str("post_status"),
		Type:        str("type"),
		Author:      str("author"),
		AuthorEmail: str("author_email"),
		Content:     str("content"),
		Status:      domcomment.Status(str("status")),
		Date:        time.UnixMilli(num("created_at")),
	}, nil
}
