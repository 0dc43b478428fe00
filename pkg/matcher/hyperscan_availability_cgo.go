//go:build !wasm && cgo && hyperscan

package matcher

// HyperscanAvailable reports whether this binary was built with Hyperscan
// support (CGO build with the hyperscan tag).
func HyperscanAvailable() bool {
	return true
}
