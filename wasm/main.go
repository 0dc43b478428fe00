//go:build wasm

package main

import (
	"syscall/js"
)

func main() {
	// Export detector bindings to the extension's JavaScript side
	js.Global().Set("ChainmaskNewDetector", js.FuncOf(newDetector))
	js.Global().Set("ChainmaskFindMatches", js.FuncOf(findMatches))
	js.Global().Set("ChainmaskMask", js.FuncOf(maskContent))
	js.Global().Set("ChainmaskCloseDetector", js.FuncOf(closeDetector))
	js.Global().Set("ChainmaskGrammars", js.FuncOf(builtinGrammars))

	// Keep WASM running so the exports stay callable
	<-make(chan struct{})
}
