//go:build wasm

package main

import (
	"encoding/json"
	"strings"
	"syscall/js"
	"testing"

	"github.com/chainmask/chainmask/pkg/scanner"
	"github.com/chainmask/chainmask/pkg/serve"
	"github.com/chainmask/chainmask/pkg/types"
)

// TestDetectorCreation tests creating a detector with the builtin pack
func TestDetectorCreation(t *testing.T) {
	result := newDetector(js.Value{}, []js.Value{js.ValueOf("builtin")})

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}

	if errMsg, hasError := resultMap["error"]; hasError {
		t.Fatalf("Failed to create detector: %v", errMsg)
	}

	handle, hasHandle := resultMap["handle"]
	if !hasHandle {
		t.Fatal("Expected handle in result")
	}

	// Clean up
	closeDetector(js.Value{}, []js.Value{js.ValueOf(handle)})
}

// TestDetectorWithCustomGrammars tests creating a detector with a custom pack
func TestDetectorWithCustomGrammars(t *testing.T) {
	grammars := []*types.Grammar{
		{
			ID:       "test.evm",
			Name:     "Test EVM Address",
			Family:   types.FamilyEvmAddress,
			Pattern:  `0x[0-9a-fA-F]{40}`,
			Priority: 1,
		},
	}

	grammarsJSON, err := json.Marshal(grammars)
	if err != nil {
		t.Fatalf("Failed to marshal grammars: %v", err)
	}

	result := newDetector(js.Value{}, []js.Value{js.ValueOf(string(grammarsJSON))})

	resultMap, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected map result, got %T", result)
	}

	if errMsg, hasError := resultMap["error"]; hasError {
		t.Fatalf("Failed to create detector: %v", errMsg)
	}

	handle := resultMap["handle"]
	closeDetector(js.Value{}, []js.Value{js.ValueOf(handle)})
}

// TestFindMatches tests scanning page content for identifiers
func TestFindMatches(t *testing.T) {
	createResult := newDetector(js.Value{}, []js.Value{js.ValueOf("builtin")})
	handle := createResult.(map[string]interface{})["handle"].(int)
	defer closeDetector(js.Value{}, []js.Value{js.ValueOf(handle)})

	content := "The refund wallet is 0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	resultStr := findMatches(js.Value{}, []js.Value{
		js.ValueOf(handle),
		js.ValueOf(content),
		js.ValueOf("page:main"),
	})

	// Should return JSON string
	jsonStr, ok := resultStr.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", resultStr, resultStr)
	}

	var result scanner.ScanResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}

	if len(result.Matches) == 0 {
		t.Error("Expected at least one match")
	}

	if result.Source != "page:main" {
		t.Errorf("Expected source 'page:main', got %q", result.Source)
	}
}

// TestMaskContent tests masking detected identifiers in content
func TestMaskContent(t *testing.T) {
	createResult := newDetector(js.Value{}, []js.Value{js.ValueOf("builtin")})
	handle := createResult.(map[string]interface{})["handle"].(int)
	defer closeDetector(js.Value{}, []js.Value{js.ValueOf(handle)})

	content := "refund went to 0x742d35Cc6634C0532925a3b844Bc454e4438f44e please check"
	resultStr := maskContent(js.Value{}, []js.Value{
		js.ValueOf(handle),
		js.ValueOf(content),
	})

	jsonStr, ok := resultStr.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", resultStr, resultStr)
	}

	var result serve.MaskData
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}

	if result.MatchCount != 1 {
		t.Errorf("Expected 1 match, got %d", result.MatchCount)
	}

	// Default style keeps head and tail around an ellipsis
	if !strings.Contains(result.Masked, "0x742d…f44e") {
		t.Errorf("Expected partially masked address, got %q", result.Masked)
	}
	if strings.Contains(result.Masked, "0x742d35Cc6634C0532925a3b844Bc454e4438f44e") {
		t.Errorf("Full address leaked into masked output: %q", result.Masked)
	}
}

// TestMaskContentWithOptions tests mask style options passed as JSON
func TestMaskContentWithOptions(t *testing.T) {
	createResult := newDetector(js.Value{}, []js.Value{js.ValueOf("builtin")})
	handle := createResult.(map[string]interface{})["handle"].(int)
	defer closeDetector(js.Value{}, []js.Value{js.ValueOf(handle)})

	content := "send to 0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	resultStr := maskContent(js.Value{}, []js.Value{
		js.ValueOf(handle),
		js.ValueOf(content),
		js.ValueOf(`{"style":"full","placeholder":"[wallet]"}`),
	})

	jsonStr, ok := resultStr.(string)
	if !ok {
		t.Fatalf("Expected string result, got %T: %v", resultStr, resultStr)
	}

	var result serve.MaskData
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}

	if result.Masked != "send to [wallet]" {
		t.Errorf("Expected placeholder replacement, got %q", result.Masked)
	}
}

// TestBuiltinGrammars tests retrieving the embedded grammar pack
func TestBuiltinGrammars(t *testing.T) {
	result := builtinGrammars(js.Value{}, nil)

	jsonStr, ok := result.(string)
	if !ok {
		// Check if it's an error
		if errMap, isMap := result.(map[string]interface{}); isMap {
			t.Fatalf("Got error: %v", errMap["error"])
		}
		t.Fatalf("Expected string result, got %T", result)
	}

	var grammars []*types.Grammar
	if err := json.Unmarshal([]byte(jsonStr), &grammars); err != nil {
		t.Fatalf("Failed to parse grammars: %v", err)
	}

	if len(grammars) == 0 {
		t.Error("Expected at least one builtin grammar")
	}

	// Verify grammars have required fields
	for _, g := range grammars {
		if g.ID == "" {
			t.Error("Grammar missing ID")
		}
		if g.Pattern == "" {
			t.Error("Grammar missing Pattern")
		}
	}
}

// TestCloseDetector tests detector cleanup
func TestCloseDetector(t *testing.T) {
	createResult := newDetector(js.Value{}, []js.Value{js.ValueOf("builtin")})
	handle := createResult.(map[string]interface{})["handle"].(int)

	closeResult := closeDetector(js.Value{}, []js.Value{js.ValueOf(handle)})
	if closeResult != nil {
		if errMap, ok := closeResult.(map[string]interface{}); ok {
			t.Fatalf("Close failed: %v", errMap["error"])
		}
	}

	// Try to use closed detector - should error
	scanResult := findMatches(js.Value{}, []js.Value{
		js.ValueOf(handle),
		js.ValueOf("test"),
	})

	if errMap, ok := scanResult.(map[string]interface{}); ok {
		if _, hasError := errMap["error"]; !hasError {
			t.Error("Expected error when using closed detector")
		}
	} else {
		t.Error("Expected error when using closed detector")
	}
}

// TestInvalidHandle tests error handling for unknown detector handles
func TestInvalidHandle(t *testing.T) {
	result := findMatches(js.Value{}, []js.Value{
		js.ValueOf(99999),
		js.ValueOf("test"),
	})

	errMap, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("Expected error map, got %T", result)
	}

	if _, hasError := errMap["error"]; !hasError {
		t.Error("Expected error for invalid handle")
	}
}
