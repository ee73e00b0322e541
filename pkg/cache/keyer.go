package cache

import "fmt"

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// LinesKey addresses extracted lines of a source document.
	LinesKey(sourceHash, format string) string
	// LayoutKey addresses geometry for a sorted outline under a config.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string
	// ArtifactKey addresses a rendered output.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds everything besides the items that changes geometry.
type LayoutKeyOpts struct {
	ConfigHash string `json:"config"`
	Orphans    string `json:"orphans"`
}

// ArtifactKeyOpts holds everything besides the geometry that changes output.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	VizType   string  `json:"viz_type"`
	StyleHash string  `json:"style"`
	Scale     float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces "stage:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LinesKey returns "lines:<format>:<source hash>".
func (DefaultKeyer) LinesKey(sourceHash, format string) string {
	return fmt.Sprintf("lines:%s:%s", format, sourceHash)
}

// LayoutKey hashes the items hash together with opts.
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey hashes the layout hash together with opts.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
