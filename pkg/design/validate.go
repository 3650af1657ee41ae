package design

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCycle is reported when a node's child list contains one of its own
	// ancestors (or itself). Continuing would recurse forever.
	ErrCycle = errors.New("child ownership cycle")

	// ErrDuplicateID is reported when two nodes share an identifier, or when
	// the same node is owned by two parents.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrMissingID is reported for nodes without an identifier.
	ErrMissingID = errors.New("node ID must not be empty")

	// ErrNilNode is reported for null entries in a page list, a page's
	// node list or a child list.
	ErrNilNode = errors.New("null node")
)

// StructuralError is a violation of the graph's ownership invariants. It is
// the only failure that aborts processing of a document.
//
// NodeIDs lists the offending identifiers: for ErrCycle the node whose child
// list closes the cycle followed by the ancestor it points back to; for
// ErrDuplicateID the duplicated ID followed by the IDs of both owners ("" for
// a page root); for ErrMissingID and ErrNilNode the ID of the parent whose
// child list holds the entry ("" for a page root). A null page is reported
// with Page set to its position, "#<index>".
type StructuralError struct {
	Err     error
	Page    string
	NodeIDs []string
}

func (e *StructuralError) Error() string {
	ids := make([]string, len(e.NodeIDs))
	for i, id := range e.NodeIDs {
		ids[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("page %q: %v: %s", e.Page, e.Err, strings.Join(ids, ", "))
}

// Unwrap returns the sentinel error.
func (e *StructuralError) Unwrap() error { return e.Err }

// Validate checks the ownership invariants of the document and returns the
// first violation as a [*StructuralError], or nil.
//
// Cycles are detected with an on-path set keyed by node identity, so the
// check terminates on arbitrary in-memory graphs. It runs in O(N).
func Validate(d *Document) error {
	owner := make(map[string]string) // node ID -> owner ID
	seen := make(map[*Node]bool)
	onPath := make(map[*Node]bool)

	for i, p := range d.Pages {
		if p == nil {
			return &StructuralError{Err: ErrNilNode, Page: fmt.Sprintf("#%d", i)}
		}
		var visit func(parent, n *Node) error
		visit = func(parent, n *Node) error {
			parentID := ""
			if parent != nil {
				parentID = parent.ID
			}
			if n == nil {
				return &StructuralError{Err: ErrNilNode, Page: p.ID, NodeIDs: []string{parentID}}
			}
			if onPath[n] {
				return &StructuralError{Err: ErrCycle, Page: p.ID, NodeIDs: []string{parentID, n.ID}}
			}
			if n.ID == "" {
				return &StructuralError{Err: ErrMissingID, Page: p.ID, NodeIDs: []string{parentID}}
			}
			if prev, dup := owner[n.ID]; dup || seen[n] {
				return &StructuralError{Err: ErrDuplicateID, Page: p.ID, NodeIDs: []string{n.ID, prev, parentID}}
			}
			owner[n.ID] = parentID
			seen[n] = true

			onPath[n] = true
			for _, c := range n.Children {
				if err := visit(n, c); err != nil {
					return err
				}
			}
			onPath[n] = false
			return nil
		}

		for _, n := range p.Nodes {
			if err := visit(nil, n); err != nil {
				return err
			}
		}
	}
	return nil
}
