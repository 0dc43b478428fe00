package types

import (
	"crypto/sha1"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// BlobID is the git-style SHA-1 content hash (20 bytes) that keys scanned
// content. Using git's blob hashing means the same bytes get the same ID
// whether they arrive from the working tree, from git history, or from an
// archive member, so provenance from different enumerators converges on one
// blob row.
type BlobID [20]byte

// ComputeBlobID hashes content the way `git hash-object` does:
// SHA-1("blob {len}\x00{content}").
func ComputeBlobID(content []byte) BlobID {
	h := sha1.New()
	fmt.Fprintf(h, "blob %d\x00", len(content))
	h.Write(content)

	var id BlobID
	copy(id[:], h.Sum(nil))
	return id
}

// Hex returns the 40-character lowercase hex form.
func (id BlobID) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements fmt.Stringer.
func (id BlobID) String() string {
	return id.Hex()
}

// ParseBlobID parses a 40-character hex string. Uppercase input is accepted;
// Hex() always renders lowercase.
func ParseBlobID(hexStr string) (BlobID, error) {
	var id BlobID
	if len(hexStr) != 2*len(id) {
		return BlobID{}, fmt.Errorf("blob ID must be %d hex characters, got %d", 2*len(id), len(hexStr))
	}
	if _, err := hex.Decode(id[:], []byte(hexStr)); err != nil {
		return BlobID{}, fmt.Errorf("decoding blob ID: %w", err)
	}
	return id, nil
}

// MarshalJSON renders the ID as a hex string.
func (id BlobID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.Hex())
}

// UnmarshalJSON parses a hex string back into the ID.
func (id *BlobID) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}

	parsed, err := ParseBlobID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}

// Value implements driver.Valuer; blob IDs are stored as hex text.
func (id BlobID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner for reading hex text columns back.
func (id *BlobID) Scan(value interface{}) error {
	var hexStr string
	switch v := value.(type) {
	case string:
		hexStr = v
	case []byte:
		hexStr = string(v)
	case nil:
		return fmt.Errorf("blob ID column is NULL")
	default:
		return fmt.Errorf("unsupported blob ID column type %T", value)
	}

	parsed, err := ParseBlobID(hexStr)
	if err != nil {
		return err
	}

	*id = parsed
	return nil
}
