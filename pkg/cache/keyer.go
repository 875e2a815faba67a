package cache

// Keyer derives cache keys. Implementations must be deterministic.
type Keyer interface {
	// LayoutKey identifies a computed layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// RenderKey identifies a rendered artifact of a document.
	RenderKey(docHash string, opts RenderKeyOpts) string
}

// LayoutKeyOpts holds the options that change a layout.
type LayoutKeyOpts struct {
	Mode   string  `json:"mode"`
	HSpace float64 `json:"hspace"`
	VSpace float64 `json:"vspace"`
	PSpace float64 `json:"pspace"`
	Depth  int     `json:"depth"`
}

// RenderKeyOpts holds the options that change a rendered artifact.
type RenderKeyOpts struct {
	Format   string        `json:"format"`
	Layout   LayoutKeyOpts `json:"layout"`
	HMargin  float64       `json:"hmargin,omitempty"`
	VMargin  float64       `json:"vmargin,omitempty"`
	Detailed bool          `json:"detailed,omitempty"`
	Scale    float64       `json:"scale,omitempty"`
	All      bool          `json:"all,omitempty"`
}

// DefaultKeyer hashes the document hash and options into a prefixed key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// RenderKey returns "render:<format>:<sha256>".
func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Format, docHash, opts)
}

var _ Keyer = DefaultKeyer{}
