//go:build wasm

package store

// New always returns a MemoryStore under WASM: the browser sandbox has no
// filesystem, so cfg.Path is ignored and results live for the detector's
// lifetime only.
func New(cfg Config) (Store, error) {
	return NewMemory(), nil
}
