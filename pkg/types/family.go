package types

import "fmt"

// Family classifies which identifier format a match belongs to.
type Family string

const (
	FamilyEvmAddress     Family = "evm_address"      // 0x + 40 hex
	FamilyEvmTxHash      Family = "evm_tx_hash"      // 0x + 64 hex
	FamilyEnsName        Family = "ens_name"         // labels + .eth
	FamilyBtcLegacy      Family = "btc_legacy"       // 1/3 + base58
	FamilyBtcSegwit      Family = "btc_segwit"       // bc1 + bech32
	FamilyBtcTxID        Family = "btc_txid"         // bare 64 hex
	FamilySolAddress     Family = "sol_address"      // base58 32-44
	FamilySolTxSignature Family = "sol_tx_signature" // base58 86-88
)

// Families returns all known families in stable order.
func Families() []Family {
	return []Family{
		FamilyEvmAddress,
		FamilyEvmTxHash,
		FamilyEnsName,
		FamilyBtcLegacy,
		FamilyBtcSegwit,
		FamilyBtcTxID,
		FamilySolAddress,
		FamilySolTxSignature,
	}
}

// ParseFamily converts a string to a Family, rejecting unknown values.
func ParseFamily(s string) (Family, error) {
	f := Family(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown family: %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the known families.
func (f Family) Valid() bool {
	switch f {
	case FamilyEvmAddress, FamilyEvmTxHash, FamilyEnsName,
		FamilyBtcLegacy, FamilyBtcSegwit, FamilyBtcTxID,
		FamilySolAddress, FamilySolTxSignature:
		return true
	}
	return false
}

// Network returns the chain ecosystem a family belongs to
// ("ethereum", "bitcoin" or "solana").
func (f Family) Network() string {
	switch f {
	case FamilyEvmAddress, FamilyEvmTxHash, FamilyEnsName:
		return "ethereum"
	case FamilyBtcLegacy, FamilyBtcSegwit, FamilyBtcTxID:
		return "bitcoin"
	case FamilySolAddress, FamilySolTxSignature:
		return "solana"
	}
	return ""
}
