package comment

import "testing"

func TestNewSearchQuery_Defaults(t *testing.T) {
	q := NewSearchQuery("hello", []string{"post", "page"})

	if q.Status != StatusApproved {
		t.Errorf("status: got %q", q.Status)
	}
	if q.PostStatus != "publish" {
		t.Errorf("post status: got %q", q.PostStatus)
	}
	if q.Number != DefaultNumber {
		t.Errorf("number: got %d", q.Number)
	}
	if !q.HasSearchTerm() {
		t.Error("expected search term")
	}
	if err := q.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestQuery_HasSearchTerm_Blank(t *testing.T) {
	if NewSearchQuery("   ", nil).HasSearchTerm() {
		t.Error("blank search must not count as a term")
	}
}

func TestQuery_Validate(t *testing.T) {
	if err := (Query{Number: 0}).Validate(); err == nil {
		t.Error("expected error for zero number")
	}
	if err := (Query{Number: 1, Status: "pending"}).Validate(); err == nil {
		t.Error("expected error for unknown status")
	}
	if err := (Query{Number: 1}).Validate(); err != nil {
		t.Errorf("empty status means any: %v", err)
	}
}

func TestToHit(t *testing.T) {
	c := Comment{ID: 42, PostID: 7, Content: "nice post"}
	h := ToHit("https://example.com/", c)

	if h.ID != "42" {
		t.Errorf("id: got %q", h.ID)
	}
	if h.Content != "nice post" {
		t.Errorf("content: got %q", h.Content)
	}
	if h.Link != "https://example.com/?p=7#comment-42" {
		t.Errorf("link: got %q", h.Link)
	}
}
