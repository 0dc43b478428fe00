package grammar

import "testing"

func TestBtcLegacyGrammar_Boundaries(t *testing.T) {
	g := loadGrammarByID(t, "btc.legacy")

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "p2pkh in prose",
			input: "donate to 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa please",
			want:  []string{"1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		},
		{
			name:  "p2sh address",
			input: "3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy",
			want:  []string{"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"},
		},
		{
			name:  "wrong version prefix",
			input: "4A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
			want:  nil,
		},
		{
			name:  "base58 forbids zero",
			input: "1A1zP1eP5QGefi2DMPTfTL5SLmv7Divf0a",
			want:  nil,
		},
		{
			name:  "pure hex run rejected by check",
			input: "1abcdefABCDEF123456789abcdefABCDE",
			want:  nil,
		},
		{
			name:  "minimum length window",
			input: "1A1zP1eP5QGefi2DMPTfTL5SL",
			want:  []string{"1A1zP1eP5QGefi2DMPTfTL5SL"},
		},
		{
			name:  "below minimum length",
			input: "1A1zP1eP5QGefi2DMPTfTL5S",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findCandidates(t, g, tt.input)
			assertValues(t, got, tt.want)
		})
	}
}

func TestBtcSegwitGrammar_Boundaries(t *testing.T) {
	g := loadGrammarByID(t, "btc.segwit")

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "v0 p2wpkh in prose",
			input: "pay bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq now",
			want:  []string{"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq"},
		},
		{
			name:  "uppercase form not recognized",
			input: "BC1QAR0SRRR7XFKVY5L643LYDNW9RE59GTZZWF5MDQ",
			want:  nil,
		},
		{
			name:  "data part too short",
			input: "bc1qar0srrr",
			want:  nil,
		},
		{
			name:  "pure hex run rejected by check",
			input: "bc1cafe0123456",
			want:  nil,
		},
		{
			name:  "bech32 forbids b i o",
			input: "bc1qar0srrr7xfkvy5l643lydnwbre59gtzz",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findCandidates(t, g, tt.input)
			assertValues(t, got, tt.want)
		})
	}
}

func TestBtcTxidGrammar_Boundaries(t *testing.T) {
	g := loadGrammarByID(t, "btc.txid")

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "bare txid in prose",
			input: "see 4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b for details",
			want:  []string{"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"},
		},
		{
			name:  "0x prefixed hex is not a txid",
			input: "0x4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
			want:  nil,
		},
		{
			name:  "63 hex",
			input: "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33",
			want:  nil,
		},
		{
			name:  "65 hex",
			input: "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33bc",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findCandidates(t, g, tt.input)
			assertValues(t, got, tt.want)
		})
	}
}

func TestBtcTruncatedGrammars_Boundaries(t *testing.T) {
	legacy := loadGrammarByID(t, "btc.legacy.truncated")
	segwit := loadGrammarByID(t, "btc.segwit.truncated")
	txid := loadGrammarByID(t, "btc.txid.truncated")

	t.Run("legacy elided", func(t *testing.T) {
		assertValues(t, findCandidates(t, legacy, "from 1A1zP1…DivfNa today"), []string{"1A1zP1…DivfNa"})
	})
	t.Run("legacy full form not elided", func(t *testing.T) {
		assertValues(t, findCandidates(t, legacy, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"), nil)
	})
	t.Run("segwit elided", func(t *testing.T) {
		assertValues(t, findCandidates(t, segwit, "bc1qar0…f5mdq"), []string{"bc1qar0…f5mdq"})
	})
	t.Run("segwit head too short", func(t *testing.T) {
		assertValues(t, findCandidates(t, segwit, "bc1q…m"), nil)
	})
	t.Run("txid elided dots", func(t *testing.T) {
		assertValues(t, findCandidates(t, txid, "4a5e1e4baab8...afdeda33b"), []string{"4a5e1e4baab8...afdeda33b"})
	})
	t.Run("txid head too short", func(t *testing.T) {
		assertValues(t, findCandidates(t, txid, "4a5…da33b"), nil)
	})
}
