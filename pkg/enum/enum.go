// Package enum discovers content to scan: filesystem trees, git histories,
// and text extracted from document formats. Enumerators yield blobs with
// provenance so findings can be traced back to where an identifier appeared.
package enum

import (
	"context"

	"github.com/chainmask/chainmask/pkg/types"
)

// Callback receives one blob per invocation: its raw content, content-derived
// ID, and provenance describing where the blob came from.
type Callback func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers content to scan from a source.
type Enumerator interface {
	// Enumerate yields blobs from the source until exhausted or the
	// context is cancelled.
	Enumerate(ctx context.Context, callback Callback) error
}

// Config controls enumeration behavior.
type Config struct {
	// Root is the starting path: a directory for filesystem enumeration,
	// a repository path for git enumeration.
	Root string

	// IncludeHidden includes dotfiles and dot-directories.
	IncludeHidden bool

	// MaxFileSize skips files larger than this many bytes (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links during filesystem walks.
	FollowSymlinks bool

	// Extract pulls text out of document formats (xlsx, docx, pdf)
	// instead of skipping them as binary.
	Extract bool

	// Ref is the git revision to enumerate (defaults to HEAD).
	// Accepts anything go-git can resolve: branch names, tags, hashes,
	// and relative forms like HEAD~2.
	Ref string
}
