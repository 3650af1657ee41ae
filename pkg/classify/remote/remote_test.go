package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/matzehuels/designtree/pkg/cache"
	"github.com/matzehuels/designtree/pkg/classify"
	"github.com/matzehuels/designtree/pkg/design"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantRole design.Role
		wantConf design.Confidence
		wantErr  bool
	}{
		{"json", `{"role":"button","confidence":"high"}`, design.RoleButton, design.ConfidenceHigh, false},
		{"json very high", `{"role":"Card","confidence":"very-high"}`, design.RoleCard, design.ConfidenceVeryHigh, false},
		{"json without confidence", `{"role":"tab"}`, design.RoleTab, design.ConfidenceMedium, false},
		{"bare label", "slider\n", design.RoleSlider, design.ConfidenceMedium, false},
		{"quoted label", `"avatar".`, design.RoleAvatar, design.ConfidenceMedium, false},
		{"unknown role", `{"role":"widget"}`, "", design.ConfidenceNone, true},
		{"bad confidence", `{"role":"card","confidence":"sure"}`, "", design.ConfidenceNone, true},
		{"prose", "I think this is probably a button", "", design.ConfidenceNone, true},
		{"broken json", `{"role":`, "", design.ConfidenceNone, true},
		{"empty", "  ", "", design.ConfidenceNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnswer([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedAnswer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role)
			assert.Equal(t, tt.wantConf, got.Confidence)
		})
	}
}

func sampleSummary() classify.Summary {
	return classify.Summary{
		Name:          "Frame 12",
		Kind:          design.KindFrame,
		Width:         320,
		Height:        180,
		ChildCount:    2,
		ChildKinds:    []classify.ChildKind{{Kind: design.KindText, Count: 1}, {Kind: design.KindRectangle, Count: 1}},
		HasTextChild:  true,
		HasBackground: true,
		CornerRadius:  12,
	}
}

func TestHTTPClassifier(t *testing.T) {
	var gotAuth string
	var gotSummary classify.Summary
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotSummary)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"role":"card","confidence":"high","reason":"rounded box"}`))
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL+"/classify", WithBearerToken("secret"))
	got, err := c.Classify(context.Background(), sampleSummary())
	require.NoError(t, err)

	assert.Equal(t, design.RoleCard, got.Role)
	assert.Equal(t, design.ConfidenceHigh, got.Confidence)
	assert.Equal(t, "rounded box", got.Reason)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Frame 12", gotSummary.Name)
	assert.Len(t, gotSummary.ChildKinds, 2)
}

func TestHTTPClassifierPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("navigation"))
	}))
	defer srv.Close()

	got, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, design.RoleNavigation, got.Role)
	assert.Equal(t, design.ConfidenceMedium, got.Confidence)
}

func TestHTTPClassifierFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"unparsable", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("no idea"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			_, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), sampleSummary())
			assert.Error(t, err)
		})
	}
}

func TestHTTPClassifierHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewHTTPClassifier(srv.URL).Classify(ctx, sampleSummary())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPClassifierWithClassifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"role":"card","confidence":"high"}`))
	}))
	defer srv.Close()

	n := &design.Node{ID: "1:1", Name: "Frame 12", Kind: design.KindFrame, Bounds: design.Rect{Width: 320, Height: 180}}
	got := classify.New(classify.WithExternal(NewHTTPClassifier(srv.URL))).Classify(context.Background(), n)
	assert.Equal(t, design.RoleCard, got.Role)
	assert.Equal(t, design.SourceExternal, got.Source)
}

type fakeModels struct {
	text   string
	err    error
	prompt string
	model  string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}}},
	}, nil
}

func TestGeminiClassifier(t *testing.T) {
	fake := &fakeModels{text: `{"role":"badge","confidence":"high"}`}
	g := newGeminiClassifier(fake, "")

	got, err := g.Classify(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, design.RoleBadge, got.Role)
	assert.Equal(t, DefaultGeminiModel, fake.model)
	assert.Contains(t, fake.prompt, `"name": "Frame 12"`)
	assert.Contains(t, fake.prompt, "very-high")
	assert.Equal(t, "gemini:"+DefaultGeminiModel, g.Name())
}

func TestGeminiClassifierErrors(t *testing.T) {
	_, err := newGeminiClassifier(&fakeModels{err: errors.New("quota")}, "m").Classify(context.Background(), sampleSummary())
	assert.Error(t, err)

	_, err = newGeminiClassifier(&fakeModels{text: "not json at all"}, "m").Classify(context.Background(), sampleSummary())
	assert.ErrorIs(t, err, ErrMalformedAnswer)
}

type countingExternal struct {
	calls atomic.Int32
	err   error
}

func (c *countingExternal) Name() string { return "counting" }

func (c *countingExternal) Classify(ctx context.Context, s classify.Summary) (design.Classification, error) {
	c.calls.Add(1)
	if c.err != nil {
		return design.Classification{}, c.err
	}
	return design.Classification{Role: design.RoleCard, Confidence: design.ConfidenceHigh}, nil
}

func TestCached(t *testing.T) {
	inner := &countingExternal{}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	s := sampleSummary()
	for range 3 {
		got, err := c.Classify(context.Background(), s)
		require.NoError(t, err)
		assert.Equal(t, design.RoleCard, got.Role)
	}
	assert.Equal(t, int32(1), inner.calls.Load())

	s.Name = "Frame 13"
	_, _ = c.Classify(context.Background(), s)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	inner := &countingExternal{err: errors.New("down")}
	c, err := NewCached(inner, 8)
	require.NoError(t, err)

	for range 2 {
		_, err := c.Classify(context.Background(), sampleSummary())
		assert.Error(t, err)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 0, c.Len())
}

func TestCachedSharedStore(t *testing.T) {
	store, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	inner := &countingExternal{}
	first, err := NewCached(inner, 8, WithStore(store, nil, time.Hour))
	require.NoError(t, err)
	_, err = first.Classify(context.Background(), sampleSummary())
	require.NoError(t, err)

	// A fresh LRU backed by the same store answers without the inner call.
	second, err := NewCached(inner, 8, WithStore(store, nil, time.Hour))
	require.NoError(t, err)
	got, err := second.Classify(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, design.RoleCard, got.Role)
	assert.Equal(t, design.ConfidenceHigh, got.Confidence)
	assert.Equal(t, int32(1), inner.calls.Load())
}

func TestCachedScopesAnswersByEndpoint(t *testing.T) {
	serve := func(answer string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(answer))
		}))
	}
	cardSrv := serve(`{"role":"card","confidence":"high"}`)
	defer cardSrv.Close()
	navSrv := serve(`{"role":"navigation","confidence":"high"}`)
	defer navSrv.Close()

	store, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	first, err := NewCached(NewHTTPClassifier(cardSrv.URL), 8, WithStore(store, nil, time.Hour))
	require.NoError(t, err)
	got, err := first.Classify(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, design.RoleCard, got.Role)

	second, err := NewCached(NewHTTPClassifier(navSrv.URL), 8, WithStore(store, nil, time.Hour))
	require.NoError(t, err)
	got, err = second.Classify(context.Background(), sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, design.RoleNavigation, got.Role, "answer of another endpoint was reused")

	assert.NotEqual(t, first.CacheKey(), second.CacheKey())
	assert.Equal(t, "http", second.Name())
}
