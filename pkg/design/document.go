package design

// ComponentMeta describes a component definition known to the document.
// Tier and Artifact are filled once the hierarchy resolver has run.
type ComponentMeta struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Key      string `json:"key,omitempty" bson:"key,omitempty"`
	Tier     Tier   `json:"tier,omitempty" bson:"tier,omitempty"`
	Artifact string `json:"artifact,omitempty" bson:"artifact,omitempty"`
}

// StyleMeta describes a shared style referenced by nodes.
type StyleMeta struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name,omitempty" bson:"name,omitempty"`
	Type        string `json:"type,omitempty" bson:"type,omitempty"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Page is a named top-level container owning a forest of nodes.
type Page struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Selected    bool    `json:"selected,omitempty" bson:"selected,omitempty"`
	DefaultTier Tier    `json:"default_tier,omitempty" bson:"default_tier,omitempty"`
	Nodes       []*Node `json:"nodes" bson:"nodes"`
}

// Document is the canonical in-memory design document.
//
// The zero value is usable. Document is not safe for concurrent mutation;
// the resolvers in this module visit it from a single goroutine except where
// documented otherwise.
type Document struct {
	Name       string
	Pages      []*Page
	Components map[string]*ComponentMeta
	Styles     map[string]*StyleMeta
}

// Link rebuilds parent back-references for every node. Call it after
// constructing or editing a graph by hand. Null pages and nodes are
// skipped; [Validate] reports them.
func (d *Document) Link() {
	for _, p := range d.Pages {
		if p == nil {
			continue
		}
		for _, n := range p.Nodes {
			n.link(nil)
		}
	}
}

// Walk visits every node of every page in document order (pre-order).
// Returning false from fn skips the children of the current node.
func (d *Document) Walk(fn func(n *Node) bool) {
	for _, p := range d.Pages {
		if p == nil {
			continue
		}
		for _, n := range p.Nodes {
			n.Walk(fn)
		}
	}
}

// Index returns a lookup from node ID to node. It assumes the document has
// passed [Validate]; with duplicate IDs the last node wins.
func (d *Document) Index() map[string]*Node {
	idx := make(map[string]*Node)
	d.Walk(func(n *Node) bool {
		idx[n.ID] = n
		return true
	})
	return idx
}

// Lookup returns the node with the given ID.
func (d *Document) Lookup(id string) (*Node, bool) {
	var found *Node
	d.Walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// NodeCount returns the number of nodes across all pages.
func (d *Document) NodeCount() int {
	count := 0
	d.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Component returns the metadata of a component, creating an entry when the
// document does not know it yet.
func (d *Document) Component(id string) *ComponentMeta {
	if d.Components == nil {
		d.Components = make(map[string]*ComponentMeta)
	}
	c, ok := d.Components[id]
	if !ok {
		c = &ComponentMeta{ID: id}
		d.Components[id] = c
	}
	return c
}
