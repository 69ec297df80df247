package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
)

// FilterNode 是过滤 Node，可以组合多个过滤器。
// 任何一个过滤器返回 true，该物品就会被过滤掉；保留的物品维持输入顺序。
//
// 过滤器出错时默认记录日志并跳过该过滤器；Strict 为 true 时把错误返回给调用方。
type FilterNode struct {
	Filters []Filter
	Strict  bool
}

func (n *FilterNode) Name() string {
	return "filter"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	filtered := make(map[string]int, len(n.Filters))

	for _, item := range items {
		if item == nil {
			continue
		}

		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if n.Strict {
					return nil, err
				}
				log := logging.Component("filter")
				log.Warn().Err(err).Str("filter", f.Name()).Int64("book_id", item.ID).Msg("filter failed, skipped")
				continue
			}
			if ok {
				drop = true
				filtered[f.Name()]++
				break
			}
		}

		if !drop {
			out = append(out, item)
		}
	}

	if e := logging.Debug(); e.Enabled() {
		d := e.Int("in", len(items)).Int("out", len(out))
		for name, c := range filtered {
			d = d.Int(name, c)
		}
		d.Msg("filter done")
	}
	return out, nil
}
