//go:build wasm

package main

import (
	"encoding/json"
	"sync"
	"syscall/js"

	"github.com/chainmask/chainmask/pkg/mask"
	"github.com/chainmask/chainmask/pkg/scanner"
	"github.com/chainmask/chainmask/pkg/serve"
	"github.com/chainmask/chainmask/pkg/types"
)

var (
	detectors   = make(map[int]*scanner.Core)
	detectorsMu sync.RWMutex
	nextHandle  int
)

// jsError wraps an error message in the map shape the JS side checks for.
func jsError(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func lookupDetector(handle int) (*scanner.Core, bool) {
	detectorsMu.RLock()
	defer detectorsMu.RUnlock()
	core, ok := detectors[handle]
	return core, ok
}

// maskOptions mirrors serve.MaskPayload minus the content field, which
// arrives as its own JS argument.
type maskOptions struct {
	Style       string   `json:"style,omitempty"`
	Head        int      `json:"head,omitempty"`
	Tail        int      `json:"tail,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Families    []string `json:"families,omitempty"`
}

// newDetector creates a detector for the given grammar pack.
// JS: ChainmaskNewDetector(grammarsJSON) -> {handle} or {error}
// grammarsJSON may be "builtin" (or "") for the embedded pack.
func newDetector(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return jsError("grammarsJSON argument required")
	}

	grammarsJSON := args[0].String()

	core, err := scanner.NewCore(grammarsJSON, scanner.NoopLogger{})
	if err != nil {
		return jsError("failed to create detector: " + err.Error())
	}

	detectorsMu.Lock()
	handle := nextHandle
	nextHandle++
	detectors[handle] = core
	detectorsMu.Unlock()

	return map[string]interface{}{"handle": handle}
}

// findMatches scans one content string and records the matches.
// JS: ChainmaskFindMatches(handle, content, source) -> JSON {source, matches} or {error}
func findMatches(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return jsError("handle and content arguments required")
	}

	handle := args[0].Int()
	content := args[1].String()
	source := ""
	if len(args) > 2 {
		source = args[2].String()
	}

	core, ok := lookupDetector(handle)
	if !ok {
		return jsError("invalid detector handle")
	}

	result, err := core.Scan(content, source)
	if err != nil {
		return jsError("scan failed: " + err.Error())
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return jsError("failed to marshal result: " + err.Error())
	}

	return string(jsonBytes)
}

// maskContent detects identifiers and returns the masked text. Options take
// the same fields as the native-messaging mask payload, and detection here
// records nothing.
// JS: ChainmaskMask(handle, content, optionsJSON) -> JSON {masked, match_count} or {error}
func maskContent(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return jsError("handle and content arguments required")
	}

	handle := args[0].Int()
	content := args[1].String()

	var opts maskOptions
	if len(args) > 2 && args[2].String() != "" {
		if err := json.Unmarshal([]byte(args[2].String()), &opts); err != nil {
			return jsError("failed to parse options JSON: " + err.Error())
		}
	}

	core, ok := lookupDetector(handle)
	if !ok {
		return jsError("invalid detector handle")
	}

	families := make([]types.Family, len(opts.Families))
	for i, name := range opts.Families {
		families[i] = types.Family(name)
	}

	masker, err := mask.New(mask.Config{
		Style:       mask.Style(opts.Style),
		Head:        opts.Head,
		Tail:        opts.Tail,
		Placeholder: opts.Placeholder,
		Families:    families,
	})
	if err != nil {
		return jsError("failed to configure masker: " + err.Error())
	}

	matches, err := core.Detect(content)
	if err != nil {
		return jsError("detection failed: " + err.Error())
	}

	jsonBytes, err := json.Marshal(serve.MaskData{
		Masked:     masker.Apply(content, matches),
		MatchCount: len(matches),
	})
	if err != nil {
		return jsError("failed to marshal result: " + err.Error())
	}

	return string(jsonBytes)
}

// closeDetector releases a detector's resources and frees its handle.
// JS: ChainmaskCloseDetector(handle) -> null or {error}
func closeDetector(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return jsError("handle argument required")
	}

	handle := args[0].Int()

	detectorsMu.Lock()
	core, ok := detectors[handle]
	if ok {
		delete(detectors, handle)
	}
	detectorsMu.Unlock()

	if !ok {
		return jsError("invalid detector handle")
	}

	core.Close()

	return nil
}

// builtinGrammars returns the embedded grammar pack as JSON.
// JS: ChainmaskGrammars() -> JSON grammar array or {error}
func builtinGrammars(this js.Value, args []js.Value) interface{} {
	grammars, err := scanner.GetBuiltinGrammars()
	if err != nil {
		return jsError("failed to load builtin grammars: " + err.Error())
	}

	jsonBytes, err := json.Marshal(grammars)
	if err != nil {
		return jsError("failed to marshal grammars: " + err.Error())
	}

	return string(jsonBytes)
}
