package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

// CatalogRecall 按书目顺序输出全部书籍，是属性过滤类 Pipeline 的起点。
type CatalogRecall struct {
	Books BookIterator
}

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *CatalogRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *CatalogRecall) Recall(ctx context.Context, _ *core.RecommendContext) ([]*core.Item, error) {
	if r.Books == nil {
		return nil, nil
	}
	var out []*core.Item
	r.Books.Each(func(b core.Book) bool {
		out = append(out, b.ToItem())
		return true
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
