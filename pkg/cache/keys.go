package cache

import "time"

// Default lifetimes for cached entries.
const (
	TTLScan   = 24 * time.Hour     // Trees built from a source
	TTLRender = 7 * 24 * time.Hour // Rendered artifacts
)

// Keyer generates cache keys.
type Keyer interface {
	// ScanKey identifies a tree built from a source.
	ScanKey(kind, location string, opts ScanKeyOpts) string
	// RenderKey identifies one rendered artifact of a tree.
	RenderKey(treeHash string, opts RenderKeyOpts) string
}

// ScanKeyOpts lists the scan inputs that change the resulting tree.
type ScanKeyOpts struct {
	MaxDepth int    `json:"max_depth"`
	MaxNodes int    `json:"max_nodes"`
	Seed     uint64 `json:"seed"`
	Stamp    string `json:"stamp"` // Source fingerprint, e.g. a modification time
}

// RenderKeyOpts lists the render inputs that change an artifact.
type RenderKeyOpts struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Expand int    `json:"expand"`
	Style  string `json:"style,omitempty"`
	Text   bool   `json:"text,omitempty"`
	// Detailed only affects DOT and graph output.
	Detailed bool `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ScanKey returns "scan:<hash>".
func (DefaultKeyer) ScanKey(kind, location string, opts ScanKeyOpts) string {
	return hashKey("scan", kind, location, opts)
}

// RenderKey returns "render:<hash>".
func (DefaultKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return hashKey("render", treeHash, opts)
}
