package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// Source 表示一个可复用的召回源（书目/热门/MF/...）。
// 可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// BookLookup 按 ID 查书，用于给召回结果补充 Meta。catalog.Catalog 实现了它。
type BookLookup interface {
	Get(id int64) (core.Book, bool)
}

// BookIterator 按书目顺序遍历全部书籍。catalog.Catalog 实现了它。
type BookIterator interface {
	Each(fn func(core.Book) bool)
}

// newBookItem 优先使用书目中的完整记录构造 Item，找不到时退化为只有 ID 的 Item。
func newBookItem(books BookLookup, id int64) *core.Item {
	if books != nil {
		if b, ok := books.Get(id); ok {
			return b.ToItem()
		}
	}
	return core.NewItem(id)
}
