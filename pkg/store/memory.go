package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chainmask/chainmask/pkg/types"
)

// blobRecord stores blob metadata.
type blobRecord struct {
	id   types.BlobID
	size int64
}

// MemoryStore implements Store using in-memory data structures. It backs
// WASM builds and the serve/wasm scanner cores, where results live only for
// the session.
type MemoryStore struct {
	mu         sync.RWMutex
	blobs      map[string]blobRecord         // keyed by BlobID.Hex()
	grammars   map[string]*types.Grammar     // keyed by grammar ID
	matches    []*types.Match                // all matches
	matchSeen  map[string]bool               // structural IDs, mirrors the sqlite UNIQUE constraint
	findings   map[string]*types.Finding     // keyed by content finding ID
	provenance map[string][]types.Provenance // keyed by BlobID.Hex()
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		blobs:      make(map[string]blobRecord),
		grammars:   make(map[string]*types.Grammar),
		matches:    make([]*types.Match, 0),
		matchSeen:  make(map[string]bool),
		findings:   make(map[string]*types.Finding),
		provenance: make(map[string][]types.Provenance),
	}
}

// AddBlob stores a blob record.
func (m *MemoryStore) AddBlob(id types.BlobID, size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := id.Hex()
	if _, exists := m.blobs[key]; exists {
		// Idempotent - already exists
		return nil
	}

	m.blobs[key] = blobRecord{
		id:   id,
		size: size,
	}
	return nil
}

// AddGrammar stores a grammar record.
func (m *MemoryStore) AddGrammar(g *types.Grammar) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.grammars[g.ID]; exists {
		return nil
	}
	m.grammars[g.ID] = g
	return nil
}

// AddMatch stores a match record, ignoring repeats of the same structural ID.
func (m *MemoryStore) AddMatch(match *types.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if match.StructuralID != "" {
		if m.matchSeen[match.StructuralID] {
			return nil
		}
		m.matchSeen[match.StructuralID] = true
	}

	m.matches = append(m.matches, match)
	return nil
}

// AddFinding stores a finding (deduplicated by content finding ID).
func (m *MemoryStore) AddFinding(f *types.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.findings[f.ID]; exists {
		// Deduplicate - already exists
		return nil
	}

	m.findings[f.ID] = f
	return nil
}

// AddProvenance associates provenance with a blob.
func (m *MemoryStore) AddProvenance(blobID types.BlobID, prov types.Provenance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := blobID.Hex()

	// Structural comparison gives the same dedup the sqlite UNIQUE
	// constraint provides.
	for _, p := range m.provenance[key] {
		if fmt.Sprintf("%#v", p) == fmt.Sprintf("%#v", prov) {
			return nil
		}
	}

	m.provenance[key] = append(m.provenance[key], prov)
	return nil
}

// GetMatches retrieves matches for a blob in ascending offset order.
func (m *MemoryStore) GetMatches(blobID types.BlobID) ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*types.Match{}
	for _, match := range m.matches {
		if match.BlobID == blobID {
			result = append(result, match)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Location.Offset.Start < result[j].Location.Offset.Start
	})

	return result, nil
}

// GetAllMatches retrieves all matches (for JSON export).
func (m *MemoryStore) GetAllMatches() ([]*types.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to avoid external modifications
	result := make([]*types.Match, len(m.matches))
	copy(result, m.matches)
	return result, nil
}

// GetFindings retrieves all findings (for reporting).
func (m *MemoryStore) GetFindings() ([]*types.Finding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Finding, 0, len(m.findings))
	for _, finding := range m.findings {
		result = append(result, finding)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].GrammarID != result[j].GrammarID {
			return result[i].GrammarID < result[j].GrammarID
		}
		return result[i].Value < result[j].Value
	})

	return result, nil
}

// GetGrammars retrieves stored grammars sorted by priority then ID.
func (m *MemoryStore) GetGrammars() ([]*types.Grammar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*types.Grammar, 0, len(m.grammars))
	for _, g := range m.grammars {
		result = append(result, g)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// FindingExists checks if a finding with this content finding ID exists.
func (m *MemoryStore) FindingExists(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.findings[id]
	return exists, nil
}

// BlobExists checks if a blob has already been scanned.
func (m *MemoryStore) BlobExists(id types.BlobID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.blobs[id.Hex()]
	return exists, nil
}

// GetProvenance retrieves the first provenance record for a blob.
func (m *MemoryStore) GetProvenance(blobID types.BlobID) (types.Provenance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := blobID.Hex()
	provs := m.provenance[key]
	if len(provs) == 0 {
		return nil, fmt.Errorf("no provenance found for blob %s", key)
	}

	return provs[0], nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
