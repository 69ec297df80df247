package filter

import (
	"context"
	"strings"

	"github.com/rushteam/bookrec/core"
)

// AuthorFilter 保留 authors 与目标作者完全相等的书籍。
// 比较前去掉目标两端空白，大小写敏感；书目中的 authors 在加载时已去空白。
type AuthorFilter struct {
	// Author 为空时读取请求参数 author
	Author string
}

func (f *AuthorFilter) Name() string { return "filter.author" }

func (f *AuthorFilter) target(rctx *core.RecommendContext) string {
	if f.Author != "" {
		return strings.TrimSpace(f.Author)
	}
	if v, ok := rctx.Param(ParamAuthor); ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func (f *AuthorFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	b, ok := core.BookOf(item)
	if !ok {
		return true, nil
	}
	return b.Authors != f.target(rctx), nil
}
