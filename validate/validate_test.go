package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTempLayout writes content to a temp JSON file and returns its path.
func writeTempLayout(t *testing.T, content string) string {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test_layout_*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write layout: %v", err)
	}
	tmpfile.Close()
	return tmpfile.Name()
}

func TestValidateLayout_ValidLayout(t *testing.T) {
	validLayout := `{
		"name": "Test Layout",
		"description": "Test layout",
		"rows": 5,
		"cols": 5,
		"layout": [
			"S....",
			".###.",
			".....",
			".###.",
			"....E"
		]
	}`

	path := writeTempLayout(t, validLayout)

	result := validateLayout(path)
	if !result.Valid {
		t.Errorf("Expected valid layout, but got errors: %v", result.Errors)
	}

	if result.File != filepath.Base(path) {
		t.Errorf("Expected file name %s, got %s", filepath.Base(path), result.File)
	}

	found := false
	for _, info := range result.Errors {
		if contains(info, "end reachable from start") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected reachability info, got: %v", result.Errors)
	}
}

func TestValidateLayout_InvalidJSON(t *testing.T) {
	path := writeTempLayout(t, `{"name": "test", invalid json}`)

	result := validateLayout(path)
	if result.Valid {
		t.Error("Expected invalid layout due to bad JSON")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "Invalid JSON") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected 'Invalid JSON' error")
	}
}

func TestValidateLayout_MissingFile(t *testing.T) {
	result := validateLayout("/non/existent/file.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "Failed to read file") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected 'Failed to read file' error")
	}
}

func TestValidateLayout_InvalidCharacter(t *testing.T) {
	layout := `{
		"name": "Test",
		"description": "Bad character",
		"rows": 3,
		"cols": 3,
		"layout": [
			"S..",
			".X.",
			"..E"
		]
	}`

	path := writeTempLayout(t, layout)

	result := validateLayout(path)
	if result.Valid {
		t.Error("Expected invalid layout due to bad character")
	}

	found := false
	for _, err := range result.Errors {
		if contains(err, "Invalid layout") {
			found = true
			break
		}
	}
	if !found {
		t.Error("Expected 'Invalid layout' error")
	}
}

func TestValidateLayout_DimensionMismatch(t *testing.T) {
	layout := `{
		"name": "Test",
		"description": "Row count mismatch",
		"rows": 4,
		"cols": 3,
		"layout": [
			"S..",
			"...",
			"..E"
		]
	}`

	path := writeTempLayout(t, layout)

	result := validateLayout(path)
	if result.Valid {
		t.Error("Expected invalid layout due to dimension mismatch")
	}
}

func TestValidateLayout_MultipleStarts(t *testing.T) {
	layout := `{
		"name": "Test",
		"description": "Two start markers",
		"rows": 3,
		"cols": 3,
		"layout": [
			"S..",
			".S.",
			"..E"
		]
	}`

	path := writeTempLayout(t, layout)

	result := validateLayout(path)
	if result.Valid {
		t.Error("Expected invalid layout due to multiple start markers")
	}
}

func TestValidateLayout_NoPathStillValid(t *testing.T) {
	// A walled-off end is a legitimate no-path scenario, not a broken layout.
	layout := `{
		"name": "Island",
		"description": "End enclosed by barriers",
		"rows": 5,
		"cols": 5,
		"layout": [
			"S....",
			".....",
			"..###",
			"..#E#",
			"..###"
		]
	}`

	path := writeTempLayout(t, layout)

	result := validateLayout(path)
	if !result.Valid {
		t.Errorf("Expected no-path layout to be valid, got errors: %v", result.Errors)
	}

	found := false
	for _, info := range result.Errors {
		if contains(info, "NOT reachable") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected unreachable-end info, got: %v", result.Errors)
	}
}

func TestValidateLayout_NoRoles(t *testing.T) {
	layout := `{
		"name": "Blank",
		"description": "No start or end markers",
		"rows": 3,
		"cols": 3,
		"layout": [
			"...",
			".#.",
			"..."
		]
	}`

	path := writeTempLayout(t, layout)

	result := validateLayout(path)
	if !result.Valid {
		t.Errorf("Expected valid layout without roles, got errors: %v", result.Errors)
	}

	found := false
	for _, info := range result.Errors {
		if contains(info, "start and end to be placed by the user") {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("Expected roles info, got: %v", result.Errors)
	}
}

// Helper function to check if a string contains a substring
func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
