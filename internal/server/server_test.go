package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
	"github.com/matzehuels/designtree/pkg/pipeline"
)

func fixture() *design.Document {
	instance := func(id, name string) *design.Node {
		return &design.Node{
			ID: id, Name: name, Kind: design.KindInstance,
			Bounds:    design.Rect{Width: 120, Height: 40},
			Component: design.ComponentLink{IsInstance: true, ComponentID: "button"},
			Children:  []*design.Node{{ID: id + "-label", Name: "Label", Kind: design.KindText, Text: "OK"}},
		}
	}
	d := &design.Document{
		Name: "api",
		Pages: []*design.Page{
			{ID: "0:1", Name: "Components", Nodes: []*design.Node{{
				ID: "1:1", Name: "Button", Kind: design.KindComponent,
				Bounds:    design.Rect{Width: 120, Height: 40},
				Component: design.ComponentLink{IsDefinition: true, ComponentID: "button"},
				Children:  []*design.Node{{ID: "1:2", Name: "Label", Kind: design.KindText, Text: "OK"}},
			}}},
			{ID: "0:2", Name: "Home", Nodes: []*design.Node{{
				ID: "2:1", Name: "Screen", Kind: design.KindFrame,
				Bounds:    design.Rect{Width: 360, Height: 640},
				Container: design.Container{Mode: design.AxisVertical},
				Children:  []*design.Node{instance("2:2", "Submit Button"), instance("2:4", "Cancel Button")},
			}}},
		},
	}
	d.Link()
	return d
}

func body(t *testing.T, d *design.Document, extra map[string]any) *bytes.Reader {
	t.Helper()
	doc, err := design.MarshalDocument(d)
	require.NoError(t, err)
	req := map[string]any{"document": json.RawMessage(doc)}
	for k, v := range extra {
		req[k] = v
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func newTestServer(opts ...Option) http.Handler {
	return New(pipeline.NewRunner(nil, nil, nil), opts...).Handler()
}

func do(h http.Handler, method, path string, b *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if b == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, b)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	rec := do(newTestServer(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestVersion(t *testing.T) {
	rec := do(newTestServer(), http.MethodGet, "/v1/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"go_version"`)
}

func TestResolve(t *testing.T) {
	rec := do(newTestServer(), http.MethodPost, "/v1/resolve", body(t, fixture(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, rec.Header().Get("X-Run-ID"))
	require.NotNil(t, res.Plan)
	assert.Equal(t, []string{"1:1", "2:1"}, res.Plan.Order())
	assert.Len(t, res.Refs, 2)
	assert.Equal(t, 2, res.Stats.References)

	submit, ok := res.Document.Lookup("2:2")
	require.True(t, ok)
	require.NotNil(t, submit.Classification)
	assert.Equal(t, design.RoleButton, submit.Classification.Role)
	require.NotNil(t, submit.Ref)
	assert.Equal(t, "1:1", submit.Ref.ArtifactID)
}

func TestResolveTierOverride(t *testing.T) {
	extra := map[string]any{"options": map[string]any{"tiers": map[string]string{"component:button": "organism"}}}
	rec := do(newTestServer(), http.MethodPost, "/v1/resolve", body(t, fixture(), extra))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	u, ok := res.Plan.Unit("1:1")
	require.True(t, ok)
	assert.Equal(t, design.TierOrganism, u.Tier)
}

func TestClassifyOnly(t *testing.T) {
	rec := do(newTestServer(), http.MethodPost, "/v1/classify", body(t, fixture(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Nil(t, res.Plan)
	assert.Equal(t, 7, res.Stats.Classify.Nodes)
}

func TestValidate(t *testing.T) {
	rec := do(newTestServer(), http.MethodPost, "/v1/validate", body(t, fixture(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"node_count":7}`, rec.Body.String())
}

func TestDuplicateIDs(t *testing.T) {
	d := fixture()
	d.Pages[1].Nodes[0].Children[1].ID = "2:2"

	rec := do(newTestServer(), http.MethodPost, "/v1/resolve", body(t, d, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, apperrors.ErrCodeDuplicateID, resp.Code)
	assert.Contains(t, resp.NodeIDs, "2:2")
	assert.NotEmpty(t, resp.RequestID)
}

func TestBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code apperrors.Code
	}{
		{"malformed", `{"document":`, apperrors.ErrCodeInvalidInput},
		{"missing document", `{"options":{}}`, apperrors.ErrCodeInvalidInput},
		{"bad tier", `{"document":{"pages":[]},"options":{"tiers":{"Card":"planet"}}}`, apperrors.ErrCodeInvalidTier},
		{"bad match mode", `{"document":{"pages":[]},"options":{"match_mode":"fuzzy"}}`, apperrors.ErrCodeInvalidConfig},
	}
	h := newTestServer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/v1/resolve", bytes.NewReader([]byte(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	h := newTestServer(WithMaxBodyBytes(64))
	rec := do(h, http.MethodPost, "/v1/resolve", body(t, fixture(), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "exceeds 64 bytes")
}

func TestRequestIDPropagates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRenderDOT(t *testing.T) {
	extra := map[string]any{"format": "dot", "diagram": "plan"}
	rec := do(newTestServer(), http.MethodPost, "/v1/render", body(t, fixture(), extra))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/vnd.graphviz", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph G"))
	assert.Contains(t, rec.Body.String(), `"2:1" -> "1:1"`)
}

func TestRenderRejectsFormat(t *testing.T) {
	extra := map[string]any{"format": "gif"}
	rec := do(newTestServer(), http.MethodPost, "/v1/render", body(t, fixture(), extra))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.ErrCodeInvalidFormat, decodeError(t, rec).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperrors.ErrCodeInvalidTier))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(apperrors.ErrCodeCycle))
	assert.Equal(t, http.StatusBadGateway, StatusFor(apperrors.ErrCodeClassifier))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperrors.ErrCodeInternal))
}
