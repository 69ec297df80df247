package engine

import (
	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/pipeline"
)

// 内置查询 Pipeline 名称。
const (
	PipelineAuthor    = "author"
	PipelineRating    = "rating"
	PipelineExpr      = "expr"
	PipelineRecommend = "recommend"
	PipelinePopular   = "popular"
)

func node(typ string, cfg map[string]any) pipeline.NodeConfig {
	return pipeline.NodeConfig{Type: typ, Config: cfg}
}

func newConfig(name string, nodes ...pipeline.NodeConfig) *pipeline.Config {
	c := &pipeline.Config{}
	c.Pipeline.Name = name
	c.Pipeline.Nodes = nodes
	return c
}

// attributePipeline 是属性过滤类查询：书目顺序遍历 → 过滤 → 截断到页大小。
func attributePipeline(name, filterType string, pageSize int) *pipeline.Config {
	return newConfig(name,
		node("recall.catalog", nil),
		node("filter", map[string]any{
			"strict":  true,
			"filters": []any{map[string]any{"type": filterType}},
		}),
		node("rerank.topn", map[string]any{"n": pageSize}),
	)
}

// scoredPipeline 是打分类查询：召回 → (黑名单) → 按请求条数截断。
// 黑名单在截断之前执行，被屏蔽的书不会挤占名额。
func scoredPipeline(name string, recallNode pipeline.NodeConfig, s config.Settings) *pipeline.Config {
	nodes := []pipeline.NodeConfig{recallNode}
	if s.Query.Blacklist {
		nodes = append(nodes, node("filter", map[string]any{
			"strict": true,
			"filters": []any{map[string]any{
				"type":            "blacklist",
				"key":             s.Query.BlacklistKey,
				"refresh_seconds": -1,
			}},
		}))
	}
	nodes = append(nodes, node("rerank.topn", map[string]any{"sort_by_score": true}))
	return newConfig(name, nodes...)
}

func defaultPipelines(s config.Settings) map[string]*pipeline.Config {
	return map[string]*pipeline.Config{
		PipelineAuthor:    attributePipeline(PipelineAuthor, "author", s.Query.PageSize),
		PipelineRating:    attributePipeline(PipelineRating, "rating", s.Query.PageSize),
		PipelineExpr:      attributePipeline(PipelineExpr, "expr", s.Query.PageSize),
		PipelineRecommend: scoredPipeline(PipelineRecommend, node("recall.mf", nil), s),
		PipelinePopular:   scoredPipeline(PipelinePopular, node("recall.hot", map[string]any{"key": s.Query.PopularKey}), s),
	}
}
