package catalog

import (
	"math"
	"testing"

	"github.com/rushteam/bookrec/core"
)

func TestFromBooks(t *testing.T) {
	c, err := FromBooks([]core.Book{
		{ID: 3, Authors: " A ", AverageRating: 4.8},
		{ID: 1, Authors: "A", AverageRating: 4.5},
		{ID: 2, Authors: "B", AverageRating: 3.0},
		{ID: 1, Authors: "dup", AverageRating: 1.0},
		{ID: -4, Authors: "neg", AverageRating: 1.0},
		{ID: 9, Authors: "nan", AverageRating: math.NaN()},
	})
	if err != nil {
		t.Fatalf("FromBooks() error = %v", err)
	}

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.MaxID() != 3 {
		t.Errorf("MaxID() = %d, want 3", c.MaxID())
	}
	if b, _ := c.Get(3); b.Authors != "A" {
		t.Errorf("authors not trimmed: %q", b.Authors)
	}
	if b, _ := c.Get(1); b.Authors != "A" {
		t.Errorf("duplicate replaced the first occurrence: %+v", b)
	}
	if s := c.Stats(); s.Dropped != 2 || s.Duplicates != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestCatalog_AuthorsAndRatings(t *testing.T) {
	c, _ := FromBooks([]core.Book{
		{ID: 1, Authors: "Zadie Smith", AverageRating: 3.9},
		{ID: 2, Authors: "Albert Camus", AverageRating: 4.2},
		{ID: 3, Authors: "Zadie Smith", AverageRating: 4.2},
		{ID: 4, Authors: "", AverageRating: 2.1},
	})

	authors := c.Authors()
	if len(authors) != 2 || authors[0] != "Albert Camus" || authors[1] != "Zadie Smith" {
		t.Errorf("Authors() = %v", authors)
	}

	ratings := c.RatingOptions()
	want := []float64{4.2, 3.9, 2.1}
	if len(ratings) != len(want) {
		t.Fatalf("RatingOptions() = %v, want %v", ratings, want)
	}
	for i := range want {
		if ratings[i] != want[i] {
			t.Errorf("RatingOptions()[%d] = %v, want %v", i, ratings[i], want[i])
		}
	}
}

func TestCatalog_EmptyMaxID(t *testing.T) {
	c, _ := FromBooks(nil)
	if c.MaxID() != -1 || c.Len() != 0 {
		t.Errorf("empty catalog MaxID=%d Len=%d", c.MaxID(), c.Len())
	}
}

func TestCatalog_BooksIsCopy(t *testing.T) {
	c, _ := FromBooks([]core.Book{{ID: 1, Title: "x"}})
	books := c.Books()
	books[0].Title = "mutated"
	if b, _ := c.Get(1); b.Title != "x" {
		t.Error("Books() exposed internal storage")
	}
}
