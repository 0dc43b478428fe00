package prefilter

import (
	"strings"
	"sync"
	"testing"

	"github.com/chainmask/chainmask/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGrammars() []*types.Grammar {
	return []*types.Grammar{
		{ID: "evm.address", Anchors: []string{"0x"}},
		{ID: "btc.segwit", Anchors: []string{"bc1"}},
		{ID: "sol.address.truncated", Anchors: []string{"...", "…"}},
		{ID: "btc.txid"}, // no anchors, always runs
		{ID: "sol.address"},
	}
}

func filteredIDs(pf *Prefilter, content string) []string {
	var ids []string
	for _, g := range pf.Filter([]byte(content)) {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestFilter_NoAnchorGrammarsAlwaysIncluded(t *testing.T) {
	pf := New(testGrammars())

	ids := filteredIDs(pf, "plain prose with nothing interesting")
	assert.ElementsMatch(t, []string{"btc.txid", "sol.address"}, ids)
}

func TestFilter_AnchorActivatesGrammar(t *testing.T) {
	pf := New(testGrammars())

	ids := filteredIDs(pf, "send to 0xdeadbeef")
	assert.Contains(t, ids, "evm.address")
	assert.NotContains(t, ids, "btc.segwit")
	assert.NotContains(t, ids, "sol.address.truncated")
}

func TestFilter_CaseInsensitiveAnchors(t *testing.T) {
	pf := New(testGrammars())

	// Anchors are lowercase; the search must still hit uppercase text so a
	// grammar is never skipped on case alone
	ids := filteredIDs(pf, "SEND TO 0XDEADBEEF VIA BC1QSOMETHING")
	assert.Contains(t, ids, "evm.address")
	assert.Contains(t, ids, "btc.segwit")
}

func TestFilter_EllipsisAnchor(t *testing.T) {
	pf := New(testGrammars())

	ids := filteredIDs(pf, "wallet Tok…Q5DA shown")
	assert.Contains(t, ids, "sol.address.truncated")

	ids = filteredIDs(pf, "wallet Tok...Q5DA shown")
	assert.Contains(t, ids, "sol.address.truncated")
}

func TestFilter_EmptyContent(t *testing.T) {
	pf := New(testGrammars())

	ids := filteredIDs(pf, "")
	assert.ElementsMatch(t, []string{"btc.txid", "sol.address"}, ids)
}

func TestFilter_NoGrammars(t *testing.T) {
	pf := New(nil)
	assert.Empty(t, pf.Filter([]byte("0x content")))
}

func TestFilter_OnlyAnchorlessGrammars(t *testing.T) {
	pf := New([]*types.Grammar{{ID: "a"}, {ID: "b"}})

	ids := filteredIDs(pf, "anything")
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestFilter_GrammarListedOnce(t *testing.T) {
	// A grammar with several anchors present in content appears once
	pf := New([]*types.Grammar{
		{ID: "multi", Anchors: []string{"...", "…"}},
	})

	ids := filteredIDs(pf, "both ... and … appear")
	assert.Equal(t, []string{"multi"}, ids)
}

func TestFilter_SharedAnchor(t *testing.T) {
	// Two grammars on the same anchor both activate
	pf := New([]*types.Grammar{
		{ID: "evm.address", Anchors: []string{"0x"}},
		{ID: "evm.txhash", Anchors: []string{"0x"}},
	})

	ids := filteredIDs(pf, "0xcafe")
	assert.ElementsMatch(t, []string{"evm.address", "evm.txhash"}, ids)
}

func TestFilter_ConcurrentUse(t *testing.T) {
	pf := New(testGrammars())
	content := []byte("pay 0xdeadbeef or bc1qsomething " + strings.Repeat("filler ", 100))

	want := filteredIDs(pf, string(content))
	require.NotEmpty(t, want)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := pf.Filter(content)
			assert.Len(t, got, len(want))
		}()
	}
	wg.Wait()
}
