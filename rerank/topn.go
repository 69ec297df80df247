package rerank

import (
	"context"
	"sort"
	"strconv"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/conv"
	"github.com/rushteam/bookrec/pkg/utils"
)

// LabelTotal 是截断前候选数量的请求级 Label。
const LabelTotal = "rerank_total"

// TopNNode 是一个 Top-N 截断节点。
//
// 属性过滤的结果保持书目顺序直接截断；SortByScore 为 true 时先按分数降序、同分按 ID 升序排序。
// 截断前的候选数量写入请求级 Label rerank_total，供调用方报告总数。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.CatalogRecall{Books: cat},
//	        &filter.FilterNode{Filters: []filter.Filter{&filter.AuthorFilter{}}},
//	        &rerank.TopNNode{N: 10},
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量；N <= 0 时不截断。请求参数 top_k 优先
	N int

	SortByScore bool
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) limit(rctx *core.RecommendContext) int {
	if v, ok := rctx.Param(core.ParamTopK); ok {
		if k, ok := conv.ToInt(v); ok {
			return k
		}
	}
	return n.N
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx != nil {
		rctx.PutLabel(LabelTotal, utils.Label{Value: strconv.Itoa(len(items)), Source: "rerank"})
	}

	if n.SortByScore {
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Score != items[j].Score {
				return items[i].Score > items[j].Score
			}
			return items[i].ID < items[j].ID
		})
	}

	k := n.limit(rctx)
	if k <= 0 || len(items) <= k {
		return items, nil
	}
	return items[:k], nil
}

// Total 读取 TopNNode 记录的截断前数量，没有记录时返回 -1。
func Total(rctx *core.RecommendContext) int {
	lbl, ok := rctx.GetLabel(LabelTotal)
	if !ok {
		return -1
	}
	v, err := strconv.Atoi(lbl.Value)
	if err != nil {
		return -1
	}
	return v
}
