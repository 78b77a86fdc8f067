package engine

import (
	"strings"
	"testing"
)

func testLayout() *Layout {
	return &Layout{
		Name:        "test",
		Description: "layout for tests",
		Rows:        4,
		Cols:        5,
		Layout: []string{
			"S.#..",
			"..#..",
			"..#..",
			".....",
		},
	}
}

func TestValidateLayout(t *testing.T) {
	if err := ValidateLayout(testLayout()); err != nil {
		t.Errorf("Valid layout rejected: %v", err)
	}
}

func TestValidateLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Layout)
		wantErr string
	}{
		{"missing name", func(l *Layout) { l.Name = "" }, "name"},
		{"rows too small", func(l *Layout) { l.Rows = 1; l.Layout = []string{"S"} }, "rows"},
		{"row count mismatch", func(l *Layout) { l.Rows = 5 }, "rows"},
		{"row length mismatch", func(l *Layout) { l.Layout[1] = "..." }, "cells"},
		{"invalid character", func(l *Layout) { l.Layout[3] = "..X.." }, "invalid character"},
		{"duplicate start", func(l *Layout) { l.Layout[3] = "S...." }, "start markers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := testLayout()
			tt.mutate(layout)
			err := ValidateLayout(layout)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestBuildGrid(t *testing.T) {
	layout := testLayout()
	layout.Layout[3] = "....E"

	grid, err := layout.BuildGrid()
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	if grid.Rows != 4 || grid.Cols != 5 {
		t.Errorf("Expected 4x5 grid, got %dx%d", grid.Rows, grid.Cols)
	}
	start, ok := grid.Start()
	if !ok || start != (Position{Row: 0, Col: 0}) {
		t.Errorf("Expected start at (0,0), got %v", start)
	}
	end, ok := grid.End()
	if !ok || end != (Position{Row: 3, Col: 4}) {
		t.Errorf("Expected end at (3,4), got %v", end)
	}
	if grid.CountBarriers() != 3 {
		t.Errorf("Expected 3 barriers, got %d", grid.CountBarriers())
	}
	if !grid.IsBarrier(Position{Row: 1, Col: 2}) {
		t.Error("Expected barrier at (1,2)")
	}
}
