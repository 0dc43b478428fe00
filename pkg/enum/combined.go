package enum

import (
	"context"
	"sync"

	"github.com/chainmask/chainmask/pkg/types"
)

// CombinedEnumerator runs several enumerators in sequence and suppresses
// blobs whose BlobID was already yielded by an earlier one. Scanning a
// working tree and its git history together would otherwise yield most
// blobs twice.
type CombinedEnumerator struct {
	enumerators []Enumerator
}

// NewCombinedEnumerator wraps the given enumerators. Order matters: the
// first enumerator to yield a blob wins, so its provenance is the one
// recorded.
func NewCombinedEnumerator(enumerators ...Enumerator) *CombinedEnumerator {
	return &CombinedEnumerator{enumerators: enumerators}
}

// Enumerate runs each child enumerator in turn. The seen-set is guarded
// because child enumerators may invoke the callback from multiple
// goroutines.
func (c *CombinedEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var mu sync.Mutex
	seen := make(map[types.BlobID]bool)

	for _, e := range c.enumerators {
		err := e.Enumerate(ctx, func(content []byte, blobID types.BlobID, prov types.Provenance) error {
			mu.Lock()
			if seen[blobID] {
				mu.Unlock()
				return nil
			}
			seen[blobID] = true
			mu.Unlock()

			return callback(content, blobID, prov)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
