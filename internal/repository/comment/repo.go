package comment

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
)

const selectColumns = `
	c.comment_id, c.post_id, p.post_type, p.post_status, c.comment_type,
	c.author, c.author_email, c.content, c.status, c.created_at`

// Repo is the default comment store on top of the host SQL database.
// Safe for concurrent use.
type Repo struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a comment repository.
func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("comment store ping: %w", err)
	}
	return nil
}

// Search runs a LIKE search over author, author email and content,
// newest first.
func (r *Repo) Search(ctx context.Context, q domcomment.Query) ([]domcomment.Comment, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("comment search: %w", err)
	}

	var (
		where []string
		args  []any
	)
	if q.Status != "" {
		where = append(where, "c.status = ?")
		args = append(args, string(q.Status))
	}
	if q.PostStatus != "" {
		where = append(where, "p.post_status = ?")
		args = append(args, q.PostStatus)
	}
	if len(q.PostTypes) > 0 {
		where = append(where, "p.post_type IN ("+placeholders(len(q.PostTypes))+")")
		for _, pt := range q.PostTypes {
			args = append(args, pt)
		}
	}
	if q.HasSearchTerm() {
		like := "%" + escapeLike(strings.TrimSpace(q.Search)) + "%"
		where = append(where,
			`(c.author LIKE ? ESCAPE '\' OR c.author_email LIKE ? ESCAPE '\' OR c.content LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	stmt := "SELECT" + selectColumns + " FROM comments c JOIN posts p ON p.id = c.post_id"
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY c.created_at DESC, c.comment_id DESC LIMIT ?"
	args = append(args, q.Number)

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("comment search: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// All returns every comment, oldest first. Used to rebuild the search index.
func (r *Repo) All(ctx context.Context) ([]domcomment.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		"SELECT"+selectColumns+" FROM comments c JOIN posts p ON p.id = c.post_id ORDER BY c.comment_id")
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	return scanComments(rows)
}

// Save upserts comments and the post rows they point at, in one transaction.
func (r *Repo) Save(ctx context.Context, comments ...domcomment.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save comments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range comments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO posts (id, post_type, post_status) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET post_type = excluded.post_type, post_status = excluded.post_status`,
			c.PostID, c.PostType, c.PostStatus,
		); err != nil {
			return fmt.Errorf("save post %d: %w", c.PostID, err)
		}

		typ := c.Type
		if typ == "" {
			typ = "comment"
		}
		created := c.Date
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comments (comment_id, post_id, comment_type, author, author_email, content, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(comment_id) DO UPDATE SET
				post_id = excluded.post_id, comment_type = excluded.comment_type,
				author = excluded.author, author_email = excluded.author_email,
				content = excluded.content, status = excluded.status, created_at = excluded.created_at`,
			c.ID, c.PostID, typ, c.Author, c.AuthorEmail, c.Content, string(c.Status), created.UnixMilli(),
		); err != nil {
			return fmt.Errorf("save comment %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save comments: commit: %w", err)
	}
	return nil
}

func scanComments(rows *sql.Rows) ([]domcomment.Comment, error) {
	var out []domcomment.Comment
	for rows.Next() {
		var (
			c       domcomment.Comment
			status  string
			created int64
		)
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.PostType, &c.PostStatus, &c.Type,
			&c.Author, &c.AuthorEmail, &c.Content, &status, &created,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.Status = domcomment.Status(status)
		c.Date = time.UnixMilli(created)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// escapeLike escapes LIKE wildcards so the term matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
