package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domcomment "github.com/kailas-cloud/searchgate/internal/domain/comment"
	domfeature "github.com/kailas-cloud/searchgate/internal/domain/feature"
	"github.com/kailas-cloud/searchgate/internal/domain/query"
	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
	commentsuc "github.com/kailas-cloud/searchgate/internal/usecase/comments"
	featureuc "github.com/kailas-cloud/searchgate/internal/usecase/feature"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
)

// --- Mocks ---

type mockComments struct {
	searchFn func(ctx context.Context, qc query.Context, term string) (commentsuc.Result, error)
	ingestFn func(ctx context.Context, cs ...domcomment.Comment) (int, error)
	calls    int
	lastQC   query.Context
}

func (m *mockComments) Search(ctx context.Context, qc query.Context, term string) (commentsuc.Result, error) {
	m.calls++
	m.lastQC = qc
	if m.searchFn != nil {
		return m.searchFn(ctx, qc, term)
	}
	return commentsuc.Result{Hits: []domcomment.Hit{}}, nil
}

func (m *mockComments) Ingest(ctx context.Context, cs ...domcomment.Comment) (int, error) {
	if m.ingestFn != nil {
		return m.ingestFn(ctx, cs...)
	}
	return len(cs), nil
}

type mockFeatures struct {
	listFn      func(ctx context.Context) ([]domfeature.Toggle, error)
	setActiveFn func(ctx context.Context, slug string, active bool) (featureuc.Activation, error)
}

func (m *mockFeatures) List(ctx context.Context) ([]domfeature.Toggle, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockFeatures) SetActive(ctx context.Context, slug string, active bool) (featureuc.Activation, error) {
	if m.setActiveFn != nil {
		return m.setActiveFn(ctx, slug, active)
	}
	return featureuc.Activation{Toggle: domfeature.Toggle{Slug: slug, Enabled: active}}, nil
}

type mockWeighting struct {
	catalog domweighting.Catalog
	getFn   func(ctx context.Context) (domweighting.Settings, error)
	saveFn  func(ctx context.Context, s domweighting.Settings) (domweighting.Settings, error)
}

func (m *mockWeighting) Catalog() domweighting.Catalog { return m.catalog }

func (m *mockWeighting) Get(ctx context.Context) (domweighting.Settings, error) {
	if m.getFn != nil {
		return m.getFn(ctx)
	}
	return domweighting.Settings{MetaMode: domweighting.MetaModeAuto}, nil
}

func (m *mockWeighting) Save(ctx context.Context, s domweighting.Settings) (domweighting.Settings, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, s)
	}
	return s, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testServer struct {
	router    chi.Router
	comments  *mockComments
	features  *mockFeatures
	weighting *mockWeighting
	health    *mockHealth
}

func newTestServer(integration Integration, hooks map[string]ActivateHook) *testServer {
	ts := &testServer{
		comments: &mockComments{},
		features: &mockFeatures{},
		weighting: &mockWeighting{catalog: domweighting.Catalog{
			"post": domweighting.DefaultPostType("Posts"),
		}},
		health: &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	s := NewServer(ts.comments, ts.features, ts.weighting, ts.health, integration, hooks, zap.NewNop())
	r := chi.NewRouter()
	s.Routes(r)
	ts.router = r
	return ts
}

func (ts *testServer) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

// --- Comments ---

func TestSearchComments_MissingTerm_400(t *testing.T) {
	ts := newTestServer(Integration{}, nil)

	for _, target := range []string{"/elasticpress/v1/comments", "/elasticpress/v1/comments?s="} {
		rr := ts.do("GET", target, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rr.Code)
		}
		if e := decodeError(t, rr); e.Code != ErrorCodeBadRequest {
			t.Errorf("%s: code %q", target, e.Code)
		}
	}
	if ts.comments.calls != 0 {
		t.Error("search must not run without a term")
	}
}

func TestSearchComments_NoMatches_EmptyObject(t *testing.T) {
	ts := newTestServer(Integration{}, nil)

	rr := ts.do("GET", "/elasticpress/v1/comments?s=nothing", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "{}" {
		t.Errorf("expected {}, got %s", got)
	}
}

func TestSearchComments_KeyedByID(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	ts.comments.searchFn = func(_ context.Context, _ query.Context, term string) (commentsuc.Result, error) {
		if term != "great post" {
			t.Errorf("term: %q", term)
		}
		return commentsuc.Result{Hits: []domcomment.Hit{
			{ID: "7", Content: "great", Link: "https://example.com/?p=1#comment-7"},
			{ID: "3", Content: "post", Link: "https://example.com/?p=1#comment-3"},
		}}, nil
	}

	rr := ts.do("GET", "/elasticpress/v1/comments?s=great+post", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var body map[string]domcomment.Hit
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 2 || body["7"].Link != "https://example.com/?p=1#comment-7" || body["3"].ID != "3" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestSearchComments_QueryContext(t *testing.T) {
	ts := newTestServer(Integration{Admin: true, AJAX: false}, nil)

	rr := ts.do("GET", "/elasticpress/v1/comments?s=x&ep_integrate=false", "",
		HeaderOrigin, "admin", "X-Requested-With", "XMLHttpRequest")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	qc := ts.comments.lastQC
	if qc.Origin != query.OriginAdmin || qc.Transport != query.TransportAJAX {
		t.Errorf("origin/transport: %+v", qc)
	}
	if qc.Integrate != query.ForceDisable {
		t.Errorf("integrate: %v", qc.Integrate)
	}
	if !qc.AdminIntegration || qc.AJAXIntegration {
		t.Errorf("integration flags: %+v", qc)
	}
}

func TestSearchComments_DefaultQueryContext(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	ts.do("GET", "/elasticpress/v1/comments?s=x", "")

	qc := ts.comments.lastQC
	if qc.Origin != query.OriginPublic || qc.Transport != query.TransportNormal || qc.Integrate != query.Unset {
		t.Errorf("unexpected context: %+v", qc)
	}
}

func TestSearchComments_InvalidIntegrate_400(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	rr := ts.do("GET", "/elasticpress/v1/comments?s=x&ep_integrate=maybe", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", rr.Code)
	}
	if ts.comments.calls != 0 {
		t.Error("search must not run")
	}
}

func TestSearchComments_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"invalid", fmt.Errorf("wrap: %w", domain.ErrInvalidRequest), http.StatusBadRequest, ErrorCodeBadRequest},
		{"not found", fmt.Errorf("indexable post: %w", domain.ErrNotFound), http.StatusNotFound, ErrorCodeNotFound},
		{"internal", errors.New("disk I/O error"), http.StatusInternalServerError, ErrorCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(Integration{}, nil)
			ts.comments.searchFn = func(context.Context, query.Context, string) (commentsuc.Result, error) {
				return commentsuc.Result{}, tt.err
			}
			rr := ts.do("GET", "/elasticpress/v1/comments?s=x", "")
			if rr.Code != tt.status {
				t.Fatalf("got %d, want %d", rr.Code, tt.status)
			}
			e := decodeError(t, rr)
			if e.Code != tt.code {
				t.Errorf("code: got %q, want %q", e.Code, tt.code)
			}
			if tt.status == http.StatusInternalServerError && e.Message != "internal error" {
				t.Errorf("internal details leaked: %q", e.Message)
			}
		})
	}
}

func TestIngestComments(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	var got []domcomment.Comment
	ts.comments.ingestFn = func(_ context.Context, cs ...domcomment.Comment) (int, error) {
		got = cs
		return 1, nil
	}

	body := `{"comments":[
		{"id":1,"post_id":2,"post_type":"post","post_status":"publish","content":"hi","status":"approve"},
		{"id":2,"post_id":2,"post_type":"post","post_status":"publish","type":"pingback","status":"approve"}
	]}`
	rr := ts.do("POST", "/elasticpress/v1/comments", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp ingestResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Saved != 2 || resp.Indexed != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(got) != 2 || got[0].Status != domcomment.StatusApproved || got[1].Type != "pingback" {
		t.Errorf("unexpected comments: %+v", got)
	}
}

func TestIngestComments_BadRequest(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	for _, body := range []string{"{", `{"comments":[]}`} {
		rr := ts.do("POST", "/elasticpress/v1/comments", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%q: got %d", body, rr.Code)
		}
	}
}

// --- Weighting ---

func TestGetWeighting(t *testing.T) {
	ts := newTestServer(Integration{}, nil)

	rr := ts.do("GET", "/elasticpress/v1/weighting", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var body struct {
		Data             domweighting.Settings `json:"data"`
		WeightableFields map[string]any        `json:"weightable_fields"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.MetaMode != domweighting.MetaModeAuto {
		t.Errorf("meta mode: %q", body.Data.MetaMode)
	}
	if _, ok := body.WeightableFields["post"]; !ok {
		t.Errorf("missing catalog: %v", body.WeightableFields)
	}
}

func TestSaveWeighting_Success(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	var got domweighting.Settings
	ts.weighting.saveFn = func(_ context.Context, s domweighting.Settings) (domweighting.Settings, error) {
		got = s
		return s, nil
	}

	body := `{"meta_mode":"manual","weighting_configuration":{"post":{"post_title":{"enabled":true,"weight":4}}}}`
	rr := ts.do("POST", "/elasticpress/v1/weighting", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if got.MetaMode != domweighting.MetaModeManual || got.Weighting["post"]["post_title"].Weight != 4 {
		t.Errorf("unexpected settings: %+v", got)
	}

	var resp struct {
		Success bool                  `json:"success"`
		Data    domweighting.Settings `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || !resp.Data.Equal(got) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSaveWeighting_Invalid_400(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	ts.weighting.saveFn = func(context.Context, domweighting.Settings) (domweighting.Settings, error) {
		return domweighting.Settings{}, fmt.Errorf("%w: post.post_title: weight must be non-negative, got -1", domain.ErrInvalidWeighting)
	}

	rr := ts.do("POST", "/elasticpress/v1/weighting",
		`{"meta_mode":"auto","weighting_configuration":{"post":{"post_title":{"enabled":true,"weight":-1}}}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d", rr.Code)
	}
	e := decodeError(t, rr)
	if e.Code != ErrorCodeValidationFailed || !strings.Contains(e.Message, "non-negative") {
		t.Errorf("unexpected error: %+v", e)
	}
}

func TestSaveWeighting_MalformedBody_400(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	rr := ts.do("POST", "/elasticpress/v1/weighting", `{"weighting_configuration":{"post":{"post_title":{"weight":"heavy"}}}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d", rr.Code)
	}
}

func TestSaveWeighting_StorageFailure_500(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	ts.weighting.saveFn = func(context.Context, domweighting.Settings) (domweighting.Settings, error) {
		return domweighting.Settings{}, errors.New("READONLY You can't write against a read only replica")
	}
	rr := ts.do("POST", "/elasticpress/v1/weighting", `{"meta_mode":"auto"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", rr.Code)
	}
}

// --- Features ---

func TestListFeatures(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	ts.features.listFn = func(context.Context) ([]domfeature.Toggle, error) {
		return []domfeature.Toggle{
			{Slug: "search", Title: "Post Search", Enabled: true},
			{Slug: "comments", Title: "Comments", RequiresReindex: true,
				Requirements: domfeature.RequirementsStatus{Code: domfeature.StatusWarning}},
		}, nil
	}

	rr := ts.do("GET", "/elasticpress/v1/features", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var body struct {
		Features []featureJSON `json:"features"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Features) != 2 || !body.Features[0].Active || body.Features[1].Requirements.Status != "warning" {
		t.Errorf("unexpected features: %+v", body.Features)
	}
}

func TestSetFeature_RunsActivateHook(t *testing.T) {
	hookCalls := 0
	hooks := map[string]ActivateHook{
		"comments": func(context.Context) error { hookCalls++; return nil },
	}
	ts := newTestServer(Integration{}, hooks)
	ts.features.setActiveFn = func(_ context.Context, slug string, active bool) (featureuc.Activation, error) {
		return featureuc.Activation{
			Toggle:          domfeature.Toggle{Slug: slug, Enabled: active, RequiresReindex: true},
			ReindexRequired: true,
		}, nil
	}

	rr := ts.do("POST", "/elasticpress/v1/features/comments", `{"active":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	var resp setFeatureResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if !resp.ReindexRequired || !resp.Reindexed || !resp.Feature.Active {
		t.Errorf("unexpected response: %+v", resp)
	}
	if hookCalls != 1 {
		t.Errorf("hook calls: %d", hookCalls)
	}
}

func TestSetFeature_HookFailureStillSucceeds(t *testing.T) {
	hooks := map[string]ActivateHook{
		"comments": func(context.Context) error { return errors.New("index closed") },
	}
	ts := newTestServer(Integration{}, hooks)
	ts.features.setActiveFn = func(_ context.Context, slug string, active bool) (featureuc.Activation, error) {
		return featureuc.Activation{Toggle: domfeature.Toggle{Slug: slug, Enabled: active}, ReindexRequired: true}, nil
	}

	rr := ts.do("POST", "/elasticpress/v1/features/comments", `{"active":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp setFeatureResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if !resp.ReindexRequired || resp.Reindexed {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSetFeature_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{"unknown", "/elasticpress/v1/features/facets", `{"active":true}`, fmt.Errorf("feature facets: %w", domain.ErrNotFound), http.StatusNotFound},
		{"unavailable", "/elasticpress/v1/features/comments", `{"active":true}`, fmt.Errorf("x: %w", domain.ErrFeatureUnavailable), http.StatusConflict},
		{"missing active", "/elasticpress/v1/features/comments", `{}`, nil, http.StatusBadRequest},
		{"bad json", "/elasticpress/v1/features/comments", `{`, nil, http.StatusBadRequest},
		{"bad slug", "/elasticpress/v1/features/Bad%20Slug", `{"active":true}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(Integration{}, nil)
			ts.features.setActiveFn = func(context.Context, string, bool) (featureuc.Activation, error) {
				return featureuc.Activation{}, tt.err
			}
			rr := ts.do("POST", tt.path, tt.body)
			if rr.Code != tt.status {
				t.Errorf("got %d, want %d", rr.Code, tt.status)
			}
		})
	}
}

// --- Health ---

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(Integration{}, nil)
	ts.health.report = healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"settings": healthuc.CheckOK},
	}
	if rr := ts.do("GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("healthy: got %d", rr.Code)
	}

	ts.health.report = healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"comments": healthuc.CheckError},
	}
	rr := ts.do("GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: got %d", rr.Code)
	}
	var body map[string]any
	_ = json.NewDecoder(rr.Body).Decode(&body)
	if body["status"] != "degraded" {
		t.Errorf("status: %v", body["status"])
	}
}
