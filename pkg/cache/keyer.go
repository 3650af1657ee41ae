package cache

import "fmt"

// Keyer generates cache keys.
type Keyer interface {
	// DocumentKey identifies a parsed source document by content hash.
	DocumentKey(docHash string) string

	// ResultKey identifies a resolved document: the input hash plus every
	// option that changes the output.
	ResultKey(docHash string, opts ResultKeyOpts) string

	// ClassificationKey identifies an external classifier answer for a node
	// summary hash.
	ClassificationKey(provider, summaryHash string) string
}

// ResultKeyOpts holds the pipeline options that affect a resolved document.
type ResultKeyOpts struct {
	Classifier    string            `json:"classifier,omitempty"`
	Endpoint      string            `json:"endpoint,omitempty"`
	Model         string            `json:"model,omitempty"`
	Threshold     int               `json:"threshold,omitempty"`
	MatchMode     string            `json:"match_mode,omitempty"`
	Tiers         map[string]string `json:"tiers,omitempty"`
	SkipClassify  bool              `json:"skip_classify,omitempty"`
	SkipLayout    bool              `json:"skip_layout,omitempty"`
	SkipHierarchy bool              `json:"skip_hierarchy,omitempty"`
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// DocumentKey returns "doc:<hash>".
func (DefaultKeyer) DocumentKey(docHash string) string {
	return "doc:" + docHash
}

// ResultKey hashes the document hash together with the options.
func (DefaultKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return hashKey("result", docHash, opts)
}

// ClassificationKey returns "classify:<provider>:<hash>".
func (DefaultKeyer) ClassificationKey(provider, summaryHash string) string {
	return fmt.Sprintf("classify:%s:%s", provider, summaryHash)
}

var _ Keyer = DefaultKeyer{}
