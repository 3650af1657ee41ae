// Package pkg provides the core libraries for designtree.
//
// # Overview
//
// designtree turns an exported design document (a tree of frames, groups,
// text and component instances) into a component hierarchy: every visible
// node gets a semantic role and resolved layout, every component is placed
// in an atomic-design tier, and the components are emitted bottom-up so that
// each one can reference the artifacts of the components it contains.
//
// # Architecture
//
// The typical data flow through designtree:
//
//	Design document (JSON)
//	         ↓
//	    [design] package (decode, validate, safe names)
//	         ↓
//	    [classify] package (semantic roles, external fallback)
//	         ↓
//	    [layout] package (flex/absolute geometry)
//	         ↓
//	    [hierarchy] package (tiers, build plan, artifact emission)
//	         ↓
//	    Annotated document, artifacts, DOT/SVG/PDF/PNG diagrams
//
// # Quick Start
//
// Resolve a document with the default local classifier:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/designtree/pkg/design"
//	    "github.com/matzehuels/designtree/pkg/pipeline"
//	)
//
//	doc, _ := design.ReadDocumentFile("export.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), doc, pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	for _, stage := range result.Plan.Stages {
//	    fmt.Println(stage.Tier, stage.NodeIDs)
//	}
//
// # Main Packages
//
// ## Domain
//
// [design] - The document model: nodes, semantic and resolved layout
// annotations, structural validation and the JSON codec.
//
// [classify] - Rule-based semantic classification with confidence levels.
// Low-confidence nodes are sent to an external classifier from
// [classify/remote] (HTTP or Gemini), whose answers are cached.
//
// [layout] - Translates auto-layout and absolute positioning into resolved
// flex or absolute geometry, approximating what cannot be expressed.
//
// [hierarchy] - Tier assignment, dependency-ordered build plans and artifact
// emission through a [hierarchy.Builder].
//
// ## Orchestration
//
// [pipeline] - The validate → classify → layout → build pipeline shared by
// the CLI and the HTTP server.
//
// [render/nodelink] - Graphviz diagrams of the annotated tree and of the
// build plan.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [cache] - Cache backends (file, SQLite, Redis, MongoDB) and key
// derivation for results and classifier answers.
//
// [config] - File, environment and default configuration.
//
// [errors] - Coded errors shared by every entry point.
//
// [observability] - Hooks for pipeline stages, classifier calls and cache
// traffic.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/hierarchy/...   # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [design]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/design
// [classify]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/classify
// [classify/remote]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/classify/remote
// [layout]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/layout
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/hierarchy
// [hierarchy.Builder]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/hierarchy#Builder
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/designtree/pkg/buildinfo
package pkg
