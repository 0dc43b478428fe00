//go:build !wasm && (!cgo || !hyperscan)

package matcher

// HyperscanAvailable reports whether this binary was built with Hyperscan
// support (always false without CGO or the hyperscan tag).
func HyperscanAvailable() bool {
	return false
}
