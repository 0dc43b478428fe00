package types

import (
	"fmt"
	"time"
)

// Provenance tracks where scanned content came from.
type Provenance interface {
	Kind() string
	// Path returns displayable path (if applicable)
	Path() string
}

// FileProvenance for filesystem files.
type FileProvenance struct {
	FilePath string
}

// Kind returns "file".
func (f FileProvenance) Kind() string {
	return "file"
}

// Path returns the file path.
func (f FileProvenance) Path() string {
	return f.FilePath
}

// GitProvenance for git repository blobs.
type GitProvenance struct {
	RepoPath string
	Commit   *CommitMetadata // nil if not tracking commit info
	BlobPath string          // path within repo at commit
}

// Kind returns "git".
func (g GitProvenance) Kind() string {
	return "git"
}

// Path returns the blob path within the repository.
func (g GitProvenance) Path() string {
	return g.BlobPath
}

// CommitMetadata holds git commit information.
type CommitMetadata struct {
	CommitID           string
	AuthorName         string
	AuthorEmail        string
	AuthorTimestamp    time.Time
	CommitterName      string
	CommitterEmail     string
	CommitterTimestamp time.Time
	Message            string
}

// ArchiveProvenance for text extracted from an archive member (zip, xlsx,
// docx) or an embedded document like a PDF page.
type ArchiveProvenance struct {
	ArchivePath string // the archive or document file
	MemberPath  string // member within it, e.g. "xl/sharedStrings.xml"
}

// Kind returns "archive".
func (a ArchiveProvenance) Kind() string {
	return "archive"
}

// Path returns "archive:member".
func (a ArchiveProvenance) Path() string {
	return fmt.Sprintf("%s:%s", a.ArchivePath, a.MemberPath)
}

// PageProvenance for content scanned out of a browser page or other
// URL-addressed source (the serve and wasm entry points).
type PageProvenance struct {
	URL   string
	Title string // page title if known
}

// Kind returns "page".
func (p PageProvenance) Kind() string {
	return "page"
}

// Path returns the page URL.
func (p PageProvenance) Path() string {
	return p.URL
}
