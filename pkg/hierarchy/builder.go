package hierarchy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
)

// Artifact is one built unit handed to a [Builder]. Root is a copy of the
// unit's subtree in which already built components are reference nodes.
type Artifact struct {
	ID          string       `json:"id"`
	ComponentID string       `json:"component_id,omitempty"`
	Name        string       `json:"name"`
	Page        string       `json:"page,omitempty"`
	Tier        design.Tier  `json:"tier"`
	Root        *design.Node `json:"root"`
}

// Builder emits artifacts. Emit returns the path under which the artifact
// can later be found; it is recorded in the artifact reference.
//
// A Builder is called sequentially, in build order.
type Builder interface {
	Emit(ctx context.Context, a *Artifact) (string, error)
}

// paths allocates unique relative artifact paths of the form
// "<tier>/<safe_name>.json". Repeated names get a "_<n>" suffix; a suffixed
// candidate that is already taken, for example by a unit literally named
// "x_2", moves on to the next n.
type paths struct {
	taken  map[string]bool
	suffix map[string]int // next suffix to try per base
}

func (p *paths) next(a *Artifact) string {
	if p.taken == nil {
		p.taken = make(map[string]bool)
		p.suffix = make(map[string]int)
	}
	name := a.Root.SafeName
	if name == "" {
		name = design.SanitizeName(a.Name)
	}
	base := path.Join(a.Tier.String(), name)
	candidate := base + ".json"
	if p.taken[candidate] {
		n := max(p.suffix[base], 2)
		for {
			candidate = fmt.Sprintf("%s_%d.json", base, n)
			n++
			if !p.taken[candidate] {
				break
			}
		}
		p.suffix[base] = n
	}
	p.taken[candidate] = true
	return candidate
}

// MemoryBuilder keeps emitted artifacts in memory.
type MemoryBuilder struct {
	Artifacts []*Artifact
	paths     paths
}

// NewMemoryBuilder returns an empty MemoryBuilder.
func NewMemoryBuilder() *MemoryBuilder { return &MemoryBuilder{} }

// Emit implements [Builder].
func (b *MemoryBuilder) Emit(ctx context.Context, a *Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.Artifacts = append(b.Artifacts, a)
	return b.paths.next(a), nil
}

// Get returns the artifact with the given ID.
func (b *MemoryBuilder) Get(id string) (*Artifact, bool) {
	for _, a := range b.Artifacts {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// DirBuilder writes every artifact as indented JSON below a directory.
type DirBuilder struct {
	dir   string
	paths paths
}

// NewDirBuilder creates the output directory if needed.
func NewDirBuilder(dir string) (*DirBuilder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &DirBuilder{dir: dir}, nil
}

// Dir returns the output directory.
func (b *DirBuilder) Dir() string { return b.dir }

// Emit implements [Builder]. The returned path is relative to [DirBuilder.Dir].
func (b *DirBuilder) Emit(ctx context.Context, a *Artifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel := b.paths.next(a)
	if err := apperrors.ValidateArtifactPath(rel); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal artifact: %w", err)
	}
	full := filepath.Join(b.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create tier dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return rel, nil
}
