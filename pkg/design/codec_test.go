package design

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const sampleDocument = `{
  "name": "Sample",
  "pages": [{
    "id": "0:1", "name": "Home", "selected": true, "default_tier": "page",
    "nodes": [{
      "id": "1:1", "name": "Screen", "kind": "FRAME",
      "bounds": {"x": 0, "y": 0, "width": 375, "height": 812},
      "container": {"mode": "VERTICAL", "primary": "SPACE_BETWEEN", "spacing": 8, "padding": {"top": 16}},
      "children": [
        {"id": "1:2", "name": "Title", "kind": "TEXT", "text": "Hello",
         "bounds": {"x": 16, "y": 16, "width": 100, "height": 20},
         "sizing": {"horizontal": "HUG", "vertical": "HUG"}},
        {"id": "1:3", "name": "Cta", "kind": "INSTANCE",
         "bounds": {"x": 16, "y": 700, "width": 343, "height": 48},
         "component": {"is_instance": true, "component_id": "c:button"}}
      ]
    }]
  }],
  "components": [{"id": "c:button", "name": "Button", "tier": "atom"}]
}`

func TestReadDocument(t *testing.T) {
	d, err := ReadDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("ReadDocument() error: %v", err)
	}
	if len(d.Pages) != 1 || d.Pages[0].DefaultTier != TierPage {
		t.Fatalf("pages = %+v", d.Pages)
	}
	screen := d.Pages[0].Nodes[0]
	if screen.Container.Primary != AlignSpaceBetween {
		t.Errorf("Primary = %q, want SPACE_BETWEEN", screen.Container.Primary)
	}
	cta := screen.Children[1]
	if cta.Parent() != screen {
		t.Error("ReadDocument should link parents")
	}
	if c := d.Components["c:button"]; c == nil || c.Tier != TierAtom {
		t.Errorf("component = %+v, want atom tier", c)
	}
}

func TestReadDocumentRejectsDuplicateComponents(t *testing.T) {
	in := `{"pages": [], "components": [{"id": "c"}, {"id": "c"}]}`
	if _, err := ReadDocument(strings.NewReader(in)); err == nil {
		t.Fatal("expected error for duplicate component ids")
	}
}

func TestWriteDocumentRoundTripsAnnotations(t *testing.T) {
	d, err := ReadDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatal(err)
	}
	title := d.Pages[0].Nodes[0].Children[0]
	title.Classification = &Classification{Role: RoleLabel, Confidence: ConfidenceVeryHigh, Source: SourceStructural}
	title.Tier = TierAtom

	var buf bytes.Buffer
	if err := WriteDocument(d, &buf); err != nil {
		t.Fatalf("WriteDocument() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"confidence": "very-high"`) {
		t.Errorf("confidence should encode as text:\n%s", buf.String())
	}

	back, err := ReadDocument(&buf)
	if err != nil {
		t.Fatalf("re-read error: %v", err)
	}
	got := back.Pages[0].Nodes[0].Children[0]
	if got.Classification == nil || got.Classification.Role != RoleLabel || got.Tier != TierAtom {
		t.Errorf("annotations lost: %+v tier=%v", got.Classification, got.Tier)
	}
}

func TestDocumentFileRoundTrip(t *testing.T) {
	d, err := ReadDocument(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := WriteDocumentFile(d, path); err != nil {
		t.Fatalf("WriteDocumentFile() error: %v", err)
	}
	back, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile() error: %v", err)
	}
	if back.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", back.NodeCount())
	}
}

func TestReadDocumentFileNotFound(t *testing.T) {
	if _, err := ReadDocumentFile("/nonexistent/doc.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadDocumentWithNullEntries(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		page    string
		nodeIDs []string
	}{
		{"null child", `{"pages":[{"id":"p","name":"P","nodes":[{"id":"a","name":"A","kind":"FRAME","children":[null]}]}]}`, "p", []string{"a"}},
		{"null page root", `{"pages":[{"id":"p","name":"P","nodes":[null]}]}`, "p", []string{""}},
		{"null page", `{"pages":[null]}`, "#0", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ReadDocument(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ReadDocument() error: %v", err)
			}
			_ = d.NodeCount()

			err = Validate(d)
			var se *StructuralError
			if !errors.As(err, &se) || !errors.Is(err, ErrNilNode) {
				t.Fatalf("Validate() = %v, want ErrNilNode", err)
			}
			if se.Page != tt.page || !slices.Equal(se.NodeIDs, tt.nodeIDs) {
				t.Errorf("error = page %q ids %q, want page %q ids %q", se.Page, se.NodeIDs, tt.page, tt.nodeIDs)
			}
		})
	}
}
