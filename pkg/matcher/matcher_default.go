//go:build !wasm

package matcher

// New creates a regexp-based matcher (no CGO required).
// This uses the portable regexp2 implementation which is:
// - No CGO dependency (can build with CGO_ENABLED=0)
// - Comparable performance on small inputs, slower on large ones (see benchmarks)
//
// For maximum throughput on large inputs, use NewHyperscan() with
// CGO_ENABLED=1 and -tags=hyperscan.
func New(cfg Config) (Matcher, error) {
	return NewPortableRegexp(cfg.Grammars, cfg.ContextLines)
}
