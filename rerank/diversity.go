package rerank

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// AuthorDiversity 限制同一作者在结果中出现的次数，保留先出现的。
// 通常放在 TopNNode(SortByScore) 之前，避免热门作者占满列表。
type AuthorDiversity struct {
	// MaxPerAuthor 每个作者最多保留几本，<= 0 时取 1
	MaxPerAuthor int
}

func (n *AuthorDiversity) Name() string {
	return "rerank.diversity"
}

func (n *AuthorDiversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *AuthorDiversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	limit := n.MaxPerAuthor
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		b, ok := core.BookOf(it)
		if !ok {
			out = append(out, it)
			continue
		}
		if seen[b.Authors] >= limit {
			continue
		}
		seen[b.Authors]++
		out = append(out, it)
	}
	return out, nil
}
