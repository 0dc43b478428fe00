package enum

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/chainmask/chainmask/pkg/types"
)

// GitEnumerator yields the blobs reachable from a commit in a git
// repository, with commit metadata attached to each blob's provenance.
type GitEnumerator struct {
	config Config
}

// NewGitEnumerator creates a git enumerator for the repository at
// config.Root. The revision comes from config.Ref and defaults to HEAD.
func NewGitEnumerator(config Config) *GitEnumerator {
	if config.Ref == "" {
		config.Ref = "HEAD"
	}
	return &GitEnumerator{config: config}
}

// Enumerate resolves the configured revision, walks its tree, and yields
// each unique blob. Blobs sharing a git hash are yielded once.
func (e *GitEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	repo, err := git.PlainOpen(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to open git repository: %w", err)
	}

	ref, err := repo.ResolveRevision(plumbing.Revision(e.config.Ref))
	if err != nil {
		return fmt.Errorf("failed to resolve ref %s: %w", e.config.Ref, err)
	}

	commit, err := repo.CommitObject(*ref)
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to get tree: %w", err)
	}

	commitMeta := &types.CommitMetadata{
		CommitID:           commit.Hash.String(),
		AuthorName:         commit.Author.Name,
		AuthorEmail:        commit.Author.Email,
		AuthorTimestamp:    commit.Author.When,
		CommitterName:      commit.Committer.Name,
		CommitterEmail:     commit.Committer.Email,
		CommitterTimestamp: commit.Committer.When,
		Message:            commit.Message,
	}

	seen := make(map[plumbing.Hash]bool)

	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if seen[f.Hash] {
			return nil
		}
		seen[f.Hash] = true

		if e.config.MaxFileSize > 0 && f.Size > e.config.MaxFileSize {
			return nil
		}

		content, err := f.Contents()
		if err != nil {
			return fmt.Errorf("failed to get contents of %s: %w", f.Name, err)
		}

		if isBinary([]byte(content)) {
			return nil
		}

		blobID := types.ComputeBlobID([]byte(content))
		prov := types.GitProvenance{
			RepoPath: e.config.Root,
			Commit:   commitMeta,
			BlobPath: f.Name,
		}

		return callback([]byte(content), blobID, prov)
	})
	if err != nil {
		return fmt.Errorf("failed to walk tree: %w", err)
	}

	return nil
}
