// Package builders 注册内置 Node 的配置构建器，import 即生效。
package builders

import (
	"time"

	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/conv"
	"github.com/rushteam/bookrec/recall"
	"github.com/rushteam/bookrec/rerank"
)

func init() {
	config.Register("recall.catalog", BuildCatalogNode)
	config.Register("recall.mf", BuildMFNode)
	config.Register("recall.hot", BuildHotNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

func BuildCatalogNode(_ map[string]any, deps config.Dependencies) (pipeline.Node, error) {
	if deps.Catalog == nil {
		return nil, config.MissingDependency("recall.catalog", "catalog")
	}
	return &recall.CatalogRecall{Books: deps.Catalog}, nil
}

func BuildMFNode(cfg map[string]any, deps config.Dependencies) (pipeline.Node, error) {
	if deps.MF == nil {
		return nil, config.MissingDependency("recall.mf", "trained factor model")
	}
	r := &recall.MFRecall{
		Store: deps.MF,
		TopK:  int(conv.ConfigGetInt64(cfg, "top_k", 0)),
	}
	if deps.Catalog != nil {
		r.Books = deps.Catalog
	}
	return r, nil
}

func BuildHotNode(cfg map[string]any, deps config.Dependencies) (pipeline.Node, error) {
	h := &recall.Hot{
		Store: deps.Store,
		Key:   conv.ConfigGet(cfg, "key", core.DefaultPopularKey),
		IDs:   conv.SliceAnyToInt64(cfg["ids"]),
		Limit: int(conv.ConfigGetInt64(cfg, "limit", 0)),
	}
	if deps.Catalog != nil {
		h.Books = deps.Catalog
	}
	return h, nil
}

func BuildFanoutNode(cfg map[string]any, deps config.Dependencies) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]any)
	if !ok || len(sourcesConfig) == 0 {
		return nil, config.InvalidNodeConfig("recall.fanout", "sources not found or invalid")
	}
	sources := make([]recall.Source, 0, len(sourcesConfig))
	for i, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]any)
		if !ok {
			return nil, config.InvalidNodeConfig("recall.fanout", "source #%d is not a map", i)
		}
		var (
			node pipeline.Node
			err  error
		)
		switch sourceType := conv.ConfigGet(sourceMap, "type", ""); sourceType {
		case "catalog":
			node, err = BuildCatalogNode(sourceMap, deps)
		case "mf":
			node, err = BuildMFNode(sourceMap, deps)
		case "hot":
			node, err = BuildHotNode(sourceMap, deps)
		default:
			return nil, config.InvalidNodeConfig("recall.fanout", "unknown source type %q", sourceType)
		}
		if err != nil {
			return nil, err
		}
		sources = append(sources, node.(recall.Source))
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", recall.MergeFirst),
	}
	if ms := conv.ConfigGetInt64(cfg, "timeout_ms", 0); ms > 0 {
		fanout.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n := conv.ConfigGetInt64(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = int(n)
	}
	switch fanout.MergeStrategy {
	case recall.MergeFirst, recall.MergeUnion, recall.MergePriority:
	default:
		return nil, config.InvalidNodeConfig("recall.fanout", "unknown merge_strategy %q", fanout.MergeStrategy)
	}
	return fanout, nil
}

func BuildFilterNode(cfg map[string]any, deps config.Dependencies) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, config.InvalidNodeConfig("filter", "filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for i, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			return nil, config.InvalidNodeConfig("filter", "filter #%d is not a map", i)
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "author":
			filters = append(filters, &filter.AuthorFilter{Author: conv.ConfigGet(filterMap, "author", "")})

		case "rating":
			threshold, hasMin := conv.ConfigGetFloat64(filterMap, "min", 0)
			filters = append(filters, &filter.RatingFilter{
				Min:        threshold,
				FromParams: conv.ConfigGet(filterMap, "from_params", !hasMin),
			})

		case "expr":
			expr := conv.ConfigGet(filterMap, "expr", "")
			invert := conv.ConfigGet(filterMap, "invert", false)
			if expr == "" {
				filters = append(filters, &filter.ExprFilter{Invert: invert})
				continue
			}
			f, err := filter.NewExprFilter(expr, invert)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		case "blacklist":
			var bs filter.BlacklistStore
			if deps.Store != nil {
				bs = filter.NewStoreAdapter(deps.Store)
			}
			f := filter.NewBlacklistFilter(
				conv.SliceAnyToInt64(filterMap["item_ids"]),
				bs,
				conv.ConfigGet(filterMap, "key", core.DefaultBlacklistKey),
			)
			if sec := conv.ConfigGetInt64(filterMap, "refresh_seconds", 0); sec != 0 {
				f.Refresh = time.Duration(sec) * time.Second
			}
			filters = append(filters, f)

		default:
			return nil, config.InvalidNodeConfig("filter", "unknown filter type %q", filterType)
		}
	}

	return &filter.FilterNode{
		Filters: filters,
		Strict:  conv.ConfigGet(cfg, "strict", false),
	}, nil
}

func BuildTopNNode(cfg map[string]any, _ config.Dependencies) (pipeline.Node, error) {
	return &rerank.TopNNode{
		N:           int(conv.ConfigGetInt64(cfg, "n", 0)),
		SortByScore: conv.ConfigGet(cfg, "sort_by_score", false),
	}, nil
}

func BuildDiversityNode(cfg map[string]any, _ config.Dependencies) (pipeline.Node, error) {
	return &rerank.AuthorDiversity{
		MaxPerAuthor: int(conv.ConfigGetInt64(cfg, "max_per_author", 1)),
	}, nil
}
