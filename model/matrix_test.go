package model

import (
	"testing"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
)

func TestBuildInteractionMatrix_Diagonal(t *testing.T) {
	c, _ := catalog.FromBooks([]core.Book{
		{ID: 1, RatingsCount: 120},
		{ID: 4, RatingsCount: 7},
		{ID: 2, RatingsCount: 0},
	})

	m, err := BuildInteractionMatrix(c)
	if err != nil {
		t.Fatalf("BuildInteractionMatrix() error = %v", err)
	}
	if m.Dim() != 5 {
		t.Errorf("Dim() = %d, want 5", m.Dim())
	}
	if m.NNZ() != 2 {
		t.Errorf("NNZ() = %d, want 2 (zero ratings_count is unobserved)", m.NNZ())
	}

	tests := []struct {
		row, col int
		want     float64
	}{
		{1, 1, 120},
		{4, 4, 7},
		{2, 2, 0},
		{1, 4, 0},
		{3, 3, 0},
		{9, 9, 0},
	}
	for _, tt := range tests {
		if got := m.At(tt.row, tt.col); got != tt.want {
			t.Errorf("At(%d, %d) = %v, want %v", tt.row, tt.col, got, tt.want)
		}
	}

	if row := m.Row(4); len(row) != 1 || row[0] != (Entry{Index: 4, Weight: 7}) {
		t.Errorf("Row(4) = %v", row)
	}
	if col := m.Col(1); len(col) != 1 || col[0] != (Entry{Index: 1, Weight: 120}) {
		t.Errorf("Col(1) = %v", col)
	}
}

func TestBuildInteractionMatrix_EmptyCatalog(t *testing.T) {
	c, _ := catalog.FromBooks(nil)
	if _, err := BuildInteractionMatrix(c); !core.IsConfiguration(err) {
		t.Fatalf("error = %v, want CONFIGURATION", err)
	}
	if _, err := BuildInteractionMatrix(nil); !core.IsConfiguration(err) {
		t.Fatalf("nil catalog error = %v, want CONFIGURATION", err)
	}
}

func TestNewInteractionMatrix(t *testing.T) {
	m, err := NewInteractionMatrix(3, []Triplet{
		{Row: 0, Col: 2, Weight: 1},
		{Row: 0, Col: 2, Weight: 2},
		{Row: 0, Col: 1, Weight: 5},
		{Row: 2, Col: 0, Weight: 0},
	})
	if err != nil {
		t.Fatalf("NewInteractionMatrix() error = %v", err)
	}
	if got := m.At(0, 2); got != 3 {
		t.Errorf("duplicates not summed: At(0,2) = %v", got)
	}
	if row := m.Row(0); len(row) != 2 || row[0].Index != 1 || row[1].Index != 2 {
		t.Errorf("Row(0) not sorted by index: %v", row)
	}
	if m.NNZ() != 2 {
		t.Errorf("NNZ() = %d, want 2", m.NNZ())
	}

	invalid := []struct {
		name     string
		dim      int
		triplets []Triplet
	}{
		{"zero dim", 0, nil},
		{"out of range", 2, []Triplet{{Row: 2, Col: 0, Weight: 1}}},
		{"negative weight", 2, []Triplet{{Row: 0, Col: 0, Weight: -1}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewInteractionMatrix(tt.dim, tt.triplets); !core.IsConfiguration(err) {
				t.Errorf("error = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestBuildInteractionMatrix_MaxID(t *testing.T) {
	c, err := catalog.FromBooks([]core.Book{
		{ID: 1, RatingsCount: 3},
		{ID: 5_000, RatingsCount: 7},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    []MatrixOption
		wantErr bool
	}{
		{name: "default cap", opts: nil},
		{name: "at the cap", opts: []MatrixOption{WithMaxID(5_000)}},
		{name: "over the cap", opts: []MatrixOption{WithMaxID(4_999)}, wantErr: true},
		{name: "no cap", opts: []MatrixOption{WithMaxID(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BuildInteractionMatrix(c, tt.opts...)
			if tt.wantErr {
				if !core.IsConfiguration(err) {
					t.Fatalf("error = %v, want CONFIGURATION", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildInteractionMatrix() error = %v", err)
			}
			if m.Dim() != 5_001 {
				t.Errorf("Dim() = %d, want 5001", m.Dim())
			}
		})
	}
}
