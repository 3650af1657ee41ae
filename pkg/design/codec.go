package design

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// documentJSON is the wire form of a Document. Components and styles are
// lists so that duplicate IDs can be detected on decode.
type documentJSON struct {
	Name       string           `json:"name,omitempty"`
	Pages      []*Page          `json:"pages"`
	Components []*ComponentMeta `json:"components,omitempty"`
	Styles     []*StyleMeta     `json:"styles,omitempty"`
}

// MarshalJSON encodes the document with components and styles sorted by ID
// for deterministic output.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := documentJSON{Name: d.Name, Pages: d.Pages}
	if out.Pages == nil {
		out.Pages = []*Page{}
	}
	for _, c := range d.Components {
		out.Components = append(out.Components, c)
	}
	slices.SortFunc(out.Components, func(a, b *ComponentMeta) int { return strings.Compare(a.ID, b.ID) })
	for _, s := range d.Styles {
		out.Styles = append(out.Styles, s)
	}
	slices.SortFunc(out.Styles, func(a, b *StyleMeta) int { return strings.Compare(a.ID, b.ID) })
	return json.Marshal(out)
}

// UnmarshalJSON decodes the document, rejects duplicate component IDs and
// links parent back-references.
func (d *Document) UnmarshalJSON(data []byte) error {
	var in documentJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	d.Name = in.Name
	d.Pages = in.Pages
	d.Components = make(map[string]*ComponentMeta, len(in.Components))
	for _, c := range in.Components {
		if c == nil || c.ID == "" {
			return fmt.Errorf("component without id")
		}
		if _, dup := d.Components[c.ID]; dup {
			return fmt.Errorf("duplicate component id %q", c.ID)
		}
		d.Components[c.ID] = c
	}
	d.Styles = make(map[string]*StyleMeta, len(in.Styles))
	for _, s := range in.Styles {
		if s == nil || s.ID == "" {
			return fmt.Errorf("style without id")
		}
		d.Styles[s.ID] = s
	}
	d.Link()
	return nil
}

// MarshalDocument converts a document to indented JSON bytes.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDocument writes a document as indented JSON.
func WriteDocument(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteDocumentFile writes a document to a JSON file.
func WriteDocumentFile(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDocument(d, f)
}

// ReadDocument decodes a JSON document. The result is linked but not
// validated; call [Validate] before processing it.
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &d, nil
}

// ReadDocumentFile reads a JSON document from a file.
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}
