package enum

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"github.com/chainmask/chainmask/pkg/types"
)

// FilesystemEnumerator walks a directory tree and yields file blobs.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a filesystem enumerator rooted at
// config.Root.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config}
}

// Enumerate walks the tree in two phases: a sequential walk that collects
// eligible paths, then a parallel read phase that loads each file and
// invokes the callback. Files matched by a root .gitignore are skipped.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var ignore *gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		ignore, _ = gitignore.CompileIgnoreFile(gitignorePath)
	}

	var paths []string
	err := filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			if !e.config.IncludeHidden && isHidden(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 && !e.config.FollowSymlinks {
			return nil
		}

		if !e.config.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
			return nil
		}

		if ignore != nil {
			relPath, err := filepath.Rel(e.config.Root, path)
			if err != nil {
				return err
			}
			if ignore.MatchesPath(relPath) {
				return nil
			}
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	numReaders := runtime.NumCPU()
	if numReaders < 1 {
		numReaders = 1
	}

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	pathsCh := make(chan string, numReaders*2)

	g.Go(func() error {
		defer close(pathsCh)
		for _, p := range paths {
			select {
			case pathsCh <- p:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for p := range pathsCh {
				if err := e.processFile(ctx, p, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// The caller's context may have been cancelled after all readers
	// finished; surface the cancellation either way.
	if origCtx.Err() != nil {
		return origCtx.Err()
	}
	return nil
}

// processFile reads one file and yields it. Binary files are skipped unless
// extraction is enabled and the format is supported, in which case each
// extracted text segment is yielded as its own blob.
func (e *FilesystemEnumerator) processFile(ctx context.Context, path string, callback Callback) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	binary := isBinary(content)

	if binary && e.config.Extract && CanExtract(path) {
		extracted, err := ExtractText(path, content)
		if err != nil || len(extracted) == 0 {
			return nil
		}
		for _, ec := range extracted {
			blobID := types.ComputeBlobID(ec.Content)
			prov := types.ArchiveProvenance{
				ArchivePath: path,
				MemberPath:  ec.Name,
			}
			if err := callback(ec.Content, blobID, prov); err != nil {
				return err
			}
		}
		return nil
	}

	if binary {
		return nil
	}

	blobID := types.ComputeBlobID(content)
	prov := types.FileProvenance{
		FilePath: path,
	}

	return callback(content, blobID, prov)
}

// isHidden reports whether a name is a dotfile. The special entries "." and
// ".." are not hidden; treating "." as hidden would skip the entire walk
// when scanning the current directory.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// isBinary checks the first 8KB for null bytes.
func isBinary(content []byte) bool {
	checkSize := len(content)
	if checkSize > 8192 {
		checkSize = 8192
	}
	return bytes.IndexByte(content[:checkSize], 0) != -1
}
