package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func fixedModel() *FactorModel {
	items := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	users := mat.NewDense(3, 2, []float64{
		2, 0,
		0, 3,
		1, -1,
	})
	return newFactorModel(items, users)
}

func TestFactorModel_Score(t *testing.T) {
	m := fixedModel()
	tests := []struct {
		user, item int64
		want       float64
	}{
		{0, 0, 2},
		{0, 2, 2},
		{1, 1, 3},
		{2, 2, 0},
		{5, 0, 0},
		{0, -1, 0},
	}
	for _, tt := range tests {
		if got := m.Score(tt.user, tt.item); got != tt.want {
			t.Errorf("Score(%d, %d) = %v, want %v", tt.user, tt.item, got, tt.want)
		}
	}

	got := m.ScoreItems(1, []int64{0, 1, 2, 7})
	want := []float64{0, 3, 3, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScoreItems()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFactorModel_VectorsAreCopies(t *testing.T) {
	m := fixedModel()
	v, ok := m.ItemVector(0)
	if !ok {
		t.Fatal("ItemVector(0) missing")
	}
	v[0] = 99
	if m.Score(0, 0) != 2 {
		t.Error("ItemVector exposed internal storage")
	}
	if _, ok := m.UserVector(3); ok {
		t.Error("UserVector(3) should be out of range")
	}

	d := m.ItemFactors()
	d.Set(0, 0, 99)
	if m.Score(0, 0) != 2 {
		t.Error("ItemFactors exposed internal storage")
	}
}

func TestFactorModel_LossMatchesBruteForce(t *testing.T) {
	m := fixedModel()
	im, err := NewInteractionMatrix(3, []Triplet{
		{Row: 0, Col: 0, Weight: 5},
		{Row: 2, Col: 1, Weight: 2},
	})
	if err != nil {
		t.Fatalf("NewInteractionMatrix() error = %v", err)
	}
	lambda := 0.1

	var want float64
	for u := 0; u < 3; u++ {
		for i := 0; i < 3; i++ {
			s := m.Score(int64(u), int64(i))
			c, p := 1.0, 0.0
			if w := im.At(u, i); w > 0 {
				c, p = w, 1
			}
			want += c * (p - s) * (p - s)
		}
	}
	want += lambda * (mat.Norm(m.userFactors, 2)*mat.Norm(m.userFactors, 2) +
		mat.Norm(m.itemFactors, 2)*mat.Norm(m.itemFactors, 2))

	if got := m.Loss(im, lambda); math.Abs(got-want) > 1e-9 {
		t.Errorf("Loss() = %v, want %v", got, want)
	}
}
