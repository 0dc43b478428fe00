package grammar

import "embed"

// builtinGrammarsFS embeds the built-in grammar pack, one file per network
// (ethereum, bitcoin, solana) plus the ENS name grammar.
//
//go:embed grammars/*.yml
var builtinGrammarsFS embed.FS
