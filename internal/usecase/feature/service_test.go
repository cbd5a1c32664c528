package feature

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domfeature "github.com/kailas-cloud/searchgate/internal/domain/feature"
	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
)

// --- Mocks ---

type mockRepo struct {
	states   map[string]bool
	loadErr  error
	setErr   error
	setCalls int
}

func newMockRepo() *mockRepo { return &mockRepo{states: map[string]bool{}} }

func (m *mockRepo) States(context.Context) (map[string]bool, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[string]bool, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepo) SetState(_ context.Context, slug string, enabled bool) error {
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	m.states[slug] = enabled
	return nil
}

type stubFeature struct {
	slug     string
	reindex  bool
	status   domfeature.StatusCode
	setupErr error
	setups   int
}

func (f *stubFeature) Slug() string          { return f.slug }
func (f *stubFeature) Title() string         { return f.slug }
func (f *stubFeature) Summary() string       { return "" }
func (f *stubFeature) RequiresReindex() bool { return f.reindex }
func (f *stubFeature) RequirementsStatus(context.Context) domfeature.RequirementsStatus {
	return domfeature.RequirementsStatus{Code: f.status}
}

func (f *stubFeature) Setup(*indexable.Registry) error {
	f.setups++
	return f.setupErr
}

func newService(t *testing.T, repo *mockRepo, defaults map[string]bool, fs ...domfeature.Feature) *Service {
	t.Helper()
	svc, err := New(repo, fs, defaults)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return svc
}

// --- Tests ---

func TestNew_DuplicateSlug(t *testing.T) {
	_, err := New(newMockRepo(), []domfeature.Feature{&stubFeature{slug: "a"}, &stubFeature{slug: "a"}}, nil)
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestNew_InvalidSlug(t *testing.T) {
	if _, err := New(newMockRepo(), []domfeature.Feature{&stubFeature{slug: "Bad Slug"}}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestList_DefaultsAndPersisted(t *testing.T) {
	repo := newMockRepo()
	repo.states["comments"] = true
	svc := newService(t, repo, map[string]bool{"search": true},
		&stubFeature{slug: "search"}, &stubFeature{slug: "comments"}, &stubFeature{slug: "facets"})

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := map[string]bool{"search": true, "comments": true, "facets": false}
	if len(list) != 3 || list[0].Slug != "search" || list[2].Slug != "facets" {
		t.Fatalf("unexpected order: %+v", list)
	}
	for _, tg := range list {
		if tg.Enabled != want[tg.Slug] {
			t.Errorf("%s: expected %v, got %v", tg.Slug, want[tg.Slug], tg.Enabled)
		}
	}
}

func TestList_PersistedOverridesDefault(t *testing.T) {
	repo := newMockRepo()
	repo.states["search"] = false
	svc := newService(t, repo, map[string]bool{"search": true}, &stubFeature{slug: "search"})

	on, err := svc.IsEnabled(context.Background(), "search")
	if err != nil || on {
		t.Fatalf("expected off, got %v (%v)", on, err)
	}
}

func TestIsEnabled_Unknown(t *testing.T) {
	svc := newService(t, newMockRepo(), nil, &stubFeature{slug: "search"})
	on, err := svc.IsEnabled(context.Background(), "nope")
	if err != nil || on {
		t.Fatalf("unknown feature must be off, got %v (%v)", on, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newService(t, newMockRepo(), nil, &stubFeature{slug: "search"})
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetActive_ReindexRequired(t *testing.T) {
	repo := newMockRepo()
	svc := newService(t, repo, nil, &stubFeature{slug: "comments", reindex: true, status: domfeature.StatusWarning})

	act, err := svc.SetActive(context.Background(), "comments", true)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !act.ReindexRequired || !act.Toggle.Enabled {
		t.Errorf("unexpected activation: %+v", act)
	}
	if !repo.states["comments"] {
		t.Error("flag not persisted")
	}

	// Already on: no second reindex.
	act, _ = svc.SetActive(context.Background(), "comments", true)
	if act.ReindexRequired {
		t.Error("re-enabling an active feature must not require a reindex")
	}

	act, _ = svc.SetActive(context.Background(), "comments", false)
	if act.ReindexRequired || act.Toggle.Enabled {
		t.Errorf("unexpected deactivation: %+v", act)
	}
}

func TestSetActive_Unavailable(t *testing.T) {
	repo := newMockRepo()
	svc := newService(t, repo, nil, &stubFeature{slug: "comments", status: domfeature.StatusUnavailable})

	_, err := svc.SetActive(context.Background(), "comments", true)
	if !errors.Is(err, domain.ErrFeatureUnavailable) {
		t.Fatalf("expected ErrFeatureUnavailable, got %v", err)
	}
	if repo.setCalls != 0 {
		t.Error("nothing must be persisted")
	}

	// Disabling is always allowed.
	if _, err := svc.SetActive(context.Background(), "comments", false); err != nil {
		t.Fatalf("disable: %v", err)
	}
}

func TestSetActive_NotFound(t *testing.T) {
	svc := newService(t, newMockRepo(), nil)
	if _, err := svc.SetActive(context.Background(), "x", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetActive_RepoError(t *testing.T) {
	repo := newMockRepo()
	repo.setErr = errors.New("down")
	svc := newService(t, repo, nil, &stubFeature{slug: "search"})
	if _, err := svc.SetActive(context.Background(), "search", true); !errors.Is(err, repo.setErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSetupActive(t *testing.T) {
	on := &stubFeature{slug: "comments"}
	off := &stubFeature{slug: "facets"}
	svc := newService(t, newMockRepo(), map[string]bool{"comments": true}, on, off)

	if err := svc.SetupActive(context.Background(), indexable.NewRegistry()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if on.setups != 1 || off.setups != 0 {
		t.Errorf("setups: on=%d off=%d", on.setups, off.setups)
	}
}

func TestSetupActive_Error(t *testing.T) {
	f := &stubFeature{slug: "comments", setupErr: errors.New("boom")}
	svc := newService(t, newMockRepo(), map[string]bool{"comments": true}, f)
	if err := svc.SetupActive(context.Background(), indexable.NewRegistry()); !errors.Is(err, f.setupErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
