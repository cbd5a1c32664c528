package comment

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/searchgate/internal/db/sqlite"
	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func seed(t *testing.T, r *Repo) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := r.Save(context.Background(),
		domcomment.Comment{ID: 1, PostID: 10, PostType: "post", PostStatus: "publish",
			Author: "ann", Content: "Hello world", Status: domcomment.StatusApproved, Date: base},
		domcomment.Comment{ID: 2, PostID: 10, PostType: "post", PostStatus: "publish",
			Author: "bob", Content: "hello again", Status: domcomment.StatusApproved, Date: base.Add(time.Hour)},
		domcomment.Comment{ID: 3, PostID: 10, PostType: "post", PostStatus: "publish",
			Author: "eve", Content: "hello spam", Status: domcomment.StatusSpam, Date: base.Add(2 * time.Hour)},
		domcomment.Comment{ID: 4, PostID: 20, PostType: "page", PostStatus: "draft",
			Author: "ann", Content: "hello from a draft", Status: domcomment.StatusApproved, Date: base},
		domcomment.Comment{ID: 5, PostID: 30, PostType: "product", PostStatus: "publish",
			Author: "ann", Content: "hello product", Status: domcomment.StatusApproved, Date: base},
		domcomment.Comment{ID: 6, PostID: 10, PostType: "post", PostStatus: "publish",
			Author: "zed", Content: "100% sure", Status: domcomment.StatusApproved, Date: base},
	)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func ids(cs []domcomment.Comment) []int64 {
	out := make([]int64, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestSearch_DefaultArgs(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r)

	got, err := r.Search(context.Background(), domcomment.NewSearchQuery("hello", []string{"post", "page"}))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// spam, draft parent and unindexed post type are filtered; newest first.
	want := []int64{2, 1}
	if gotIDs := ids(got); len(gotIDs) != len(want) || gotIDs[0] != want[0] || gotIDs[1] != want[1] {
		t.Errorf("got %v, want %v", gotIDs, want)
	}
	if got[0].PostType != "post" || got[0].Author != "bob" {
		t.Errorf("unexpected row: %+v", got[0])
	}
}

func TestSearch_NoMatches(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r)

	got, err := r.Search(context.Background(), domcomment.NewSearchQuery("nothing-matches", []string{"post"}))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", ids(got))
	}
}

func TestSearch_MatchesAuthor(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r)

	got, err := r.Search(context.Background(), domcomment.NewSearchQuery("zed", nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != 6 {
		t.Errorf("got %v", ids(got))
	}
}

func TestSearch_LikeWildcardsAreLiteral(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r)

	got, err := r.Search(context.Background(), domcomment.NewSearchQuery("%", nil))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != 6 {
		t.Errorf("expected only the comment containing %%, got %v", ids(got))
	}
}

func TestSearch_RespectsNumber(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r)

	q := domcomment.Query{Search: "hello", Number: 2}
	got, err := r.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestSearch_InvalidQuery(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Search(context.Background(), domcomment.Query{Search: "x"}); err == nil {
		t.Fatal("expected validation error for zero number")
	}
}

func TestSave_UpsertAndAll(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r)

	err := r.Save(context.Background(), domcomment.Comment{
		ID: 1, PostID: 10, PostType: "post", PostStatus: "publish",
		Author: "ann", Content: "edited", Status: domcomment.StatusApproved,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := r.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 comments, got %d", len(all))
	}
	if all[0].ID != 1 || all[0].Content != "edited" || all[0].Type != "comment" {
		t.Errorf("unexpected first row: %+v", all[0])
	}
}

func TestPing(t *testing.T) {
	if err := newTestRepo(t).Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
