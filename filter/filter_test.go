package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/store"
)

func sampleItems() []*core.Item {
	books := []core.Book{
		{ID: 1, Authors: "A", AverageRating: 4.5, NumPages: 300},
		{ID: 2, Authors: "B", AverageRating: 3.0, NumPages: 120},
		{ID: 3, Authors: "A", AverageRating: 4.8, NumPages: 900},
		{ID: 4, Authors: "a", AverageRating: 4.0, NumPages: 50},
	}
	out := make([]*core.Item, len(books))
	for i, b := range books {
		out[i] = b.ToItem()
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equal(a, b []int64) bool {
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

func run(t *testing.T, f Filter, rctx *core.RecommendContext) []int64 {
	t.Helper()
	node := &FilterNode{Filters: []Filter{f}, Strict: true}
	out, err := node.Process(context.Background(), rctx, sampleItems())
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	return ids(out)
}

func TestAuthorFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *AuthorFilter
		rctx   *core.RecommendContext
		want   []int64
	}{
		{"exact", &AuthorFilter{Author: "A"}, nil, []int64{1, 3}},
		{"trimmed", &AuthorFilter{Author: "  A \t"}, nil, []int64{1, 3}},
		{"case sensitive", &AuthorFilter{Author: "a"}, nil, []int64{4}},
		{"no match", &AuthorFilter{Author: "Nobody"}, nil, []int64{}},
		{"from params", &AuthorFilter{}, &core.RecommendContext{Params: map[string]any{ParamAuthor: " B "}}, []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.filter, tt.rctx); !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatingFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter *RatingFilter
		rctx   *core.RecommendContext
		want   []int64
	}{
		{"inclusive", &RatingFilter{Min: 4.0}, nil, []int64{1, 3, 4}},
		{"high", &RatingFilter{Min: 4.6}, nil, []int64{3}},
		{"above all", &RatingFilter{Min: 5.0}, nil, []int64{}},
		{"param string", &RatingFilter{FromParams: true}, &core.RecommendContext{Params: map[string]any{ParamMinRating: " 4.5 "}}, []int64{1, 3}},
		{"param float", &RatingFilter{FromParams: true}, &core.RecommendContext{Params: map[string]any{ParamMinRating: 3.0}}, []int64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.filter, tt.rctx); !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseMinRating(t *testing.T) {
	for _, s := range []string{"4", "4.0", " 3.5 ", "-1", "0"} {
		if _, err := ParseMinRating(s); err != nil {
			t.Errorf("ParseMinRating(%q) error = %v", s, err)
		}
	}
	for _, s := range []string{"abc", "", "NaN", "Inf", "-Inf", "4,5"} {
		if _, err := ParseMinRating(s); !core.IsInvalidArgument(err) {
			t.Errorf("ParseMinRating(%q) error = %v, want INVALID_INPUT", s, err)
		}
	}
}

func TestRatingFilter_InvalidParam(t *testing.T) {
	node := &FilterNode{Filters: []Filter{&RatingFilter{FromParams: true}}, Strict: true}
	rctx := &core.RecommendContext{Params: map[string]any{ParamMinRating: "abc"}}
	if _, err := node.Process(context.Background(), rctx, sampleItems()); !core.IsInvalidArgument(err) {
		t.Fatalf("Process() error = %v, want INVALID_INPUT", err)
	}
}

func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter(`book.authors == "A" && book.num_pages < 500`, false)
	if err != nil {
		t.Fatalf("NewExprFilter() error = %v", err)
	}
	if got := run(t, f, nil); !equal(got, []int64{1}) {
		t.Errorf("got %v, want [1]", got)
	}

	inv, _ := NewExprFilter(`book.average_rating >= 4.5`, true)
	if got := run(t, inv, nil); !equal(got, []int64{2, 4}) {
		t.Errorf("inverted got %v, want [2 4]", got)
	}

	param := &ExprFilter{}
	rctx := &core.RecommendContext{Params: map[string]any{ParamExpr: `book.id % 2 == 0`}}
	if got := run(t, param, rctx); !equal(got, []int64{2, 4}) {
		t.Errorf("param got %v, want [2 4]", got)
	}

	if _, err := NewExprFilter(`book.authors ==`, false); !core.IsInvalidArgument(err) {
		t.Errorf("NewExprFilter(bad) error = %v, want INVALID_INPUT", err)
	}
}

func TestBlacklistFilter(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	adapter := NewStoreAdapter(s)
	if err := adapter.SetBlacklist(ctx, "blacklist:books", []int64{3}); err != nil {
		t.Fatal(err)
	}

	f := NewBlacklistFilter([]int64{1}, adapter, "blacklist:books")
	if got := run(t, f, nil); !equal(got, []int64{2, 4}) {
		t.Errorf("got %v, want [2 4]", got)
	}

	missing := NewBlacklistFilter(nil, adapter, "blacklist:none")
	if got := run(t, missing, nil); !equal(got, []int64{1, 2, 3, 4}) {
		t.Errorf("missing key got %v", got)
	}
}

func TestBlacklistFilter_Refresh(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	adapter := NewStoreAdapter(s)
	_ = adapter.SetBlacklist(ctx, "bl", []int64{2})

	f := NewBlacklistFilter(nil, adapter, "bl")
	f.Refresh = -1
	if got := run(t, f, nil); !equal(got, []int64{1, 3, 4}) {
		t.Fatalf("got %v", got)
	}
	_ = adapter.SetBlacklist(ctx, "bl", []int64{4})
	if got := run(t, f, nil); !equal(got, []int64{1, 2, 3}) {
		t.Errorf("after update got %v, want [1 2 3]", got)
	}
}

type failing struct{}

func (failing) Name() string { return "filter.failing" }
func (failing) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return false, errors.New("boom")
}

func TestFilterNode_ErrorHandling(t *testing.T) {
	lenient := &FilterNode{Filters: []Filter{failing{}, &AuthorFilter{Author: "B"}}}
	out, err := lenient.Process(context.Background(), nil, sampleItems())
	if err != nil {
		t.Fatalf("lenient Process() error = %v", err)
	}
	if got := ids(out); !equal(got, []int64{2}) {
		t.Errorf("lenient got %v, want [2]", got)
	}

	strict := &FilterNode{Filters: []Filter{failing{}}, Strict: true}
	if _, err := strict.Process(context.Background(), nil, sampleItems()); err == nil {
		t.Error("strict Process() should fail")
	}
}
