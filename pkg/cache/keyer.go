package cache

// ResultKeyOpts holds the analysis options that change a distilled result.
type ResultKeyOpts struct {
	Search      string `json:"search"`
	Libraries   bool   `json:"libraries"`
	PackagesDir string `json:"packagesDir,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey returns the key of the result for the restore artifacts
	// identified by graphHash analyzed with opts.
	ResultKey(graphHash string, opts ResultKeyOpts) string
}

// DefaultKeyer hashes the inputs of each key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey returns "result:<sha256>" over the graph hash and options.
func (DefaultKeyer) ResultKey(graphHash string, opts ResultKeyOpts) string {
	return hashKey("result", graphHash, opts)
}

var _ Keyer = DefaultKeyer{}
