package catalog

import (
	"math"
	"strings"
	"testing"

	"github.com/rushteam/bookrec/core"
)

const sampleCSV = `bookID,title,authors,average_rating,isbn,isbn13,language_code,  num_pages,ratings_count,text_reviews_count,publication_date,publisher
1,Harry Potter and the Half-Blood Prince,  J.K. Rowling ,4.57,0439785960,9780439785969,eng,652,2095690,27591,9/16/2006,Scholastic Inc.
2,Harry Potter and the Order of the Phoenix,J.K. Rowling,4.49,0439358078,9780439358071,eng,870,2153167,29221,9/1/2004,Scholastic Inc.
3,Broken Rating,Someone,not-a-number,x,x,eng,10,1,1,1/1/2000,X
4,Missing Pages,Someone,3.2,x,x,eng,,1,1,1/1/2000,X
5,The Hitchhiker's Guide,Douglas Adams,4.22,x,x,eng,215,4930,460,8/3/2004,Crown
6,Negative,Someone,3.9,x,x,eng,10,-4,1,1/1/2000,X
7,NaN Rating,Someone,NaN,x,x,eng,10,1,1,1/1/2000,X
5,Duplicate Id,Someone,4.0,x,x,eng,10,1,1,1/1/2000,X
8,Short Row,Someone
`

func TestLoad_CoercesAndDrops(t *testing.T) {
	c, err := Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got, want := c.IDs(), []int64{1, 2, 5}; !equalIDs(got, want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}

	stats := c.Stats()
	if stats.Rows != 9 {
		t.Errorf("Stats.Rows = %d, want 9", stats.Rows)
	}
	if stats.Dropped != 5 {
		t.Errorf("Stats.Dropped = %d, want 5", stats.Dropped)
	}
	if stats.Duplicates != 1 {
		t.Errorf("Stats.Duplicates = %d, want 1", stats.Duplicates)
	}

	b, ok := c.Get(1)
	if !ok {
		t.Fatal("book 1 missing")
	}
	if b.Authors != "J.K. Rowling" {
		t.Errorf("Authors = %q, want trimmed", b.Authors)
	}
	if b.NumPages != 652 || b.RatingsCount != 2095690 || b.TextReviewsCount != 27591 {
		t.Errorf("numeric fields = %+v", b)
	}
	if b.Publisher != "Scholastic Inc." || b.LanguageCode != "eng" {
		t.Errorf("optional fields = %+v", b)
	}
}

func TestLoad_NoNaNSurvives(t *testing.T) {
	c, err := Load(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	c.Each(func(b core.Book) bool {
		if math.IsNaN(b.AverageRating) || math.IsInf(b.AverageRating, 0) {
			t.Errorf("book %d has non-finite rating", b.ID)
		}
		if b.NumPages < 0 || b.RatingsCount < 0 || b.TextReviewsCount < 0 {
			t.Errorf("book %d has negative counts", b.ID)
		}
		return true
	})
}

func TestLoad_MissingColumns(t *testing.T) {
	_, err := Load(strings.NewReader("bookID,title\n1,x\n"))
	if !core.IsConfiguration(err) {
		t.Fatalf("Load() error = %v, want CONFIGURATION", err)
	}
}

func TestLoad_EmptyInput(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	if !core.IsConfiguration(err) {
		t.Fatalf("Load() error = %v, want CONFIGURATION", err)
	}
}

func TestLoad_WithComma(t *testing.T) {
	in := "bookID;title;authors;average_rating;num_pages;ratings_count;text_reviews_count\n" +
		"9;Title;Author;3.5;100;10;2\n"
	c, err := Load(strings.NewReader(in), WithComma(';'))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Len() != 1 || !c.Has(9) {
		t.Errorf("catalog = %v, want book 9", c.IDs())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("/nonexistent/books.csv")
	if !core.IsConfiguration(err) {
		t.Fatalf("LoadFile() error = %v, want CONFIGURATION", err)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12", 12, false},
		{"12.0", 12, false},
		{"12.5", 0, true},
		{"-1", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"Inf", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCount(tt.in, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
