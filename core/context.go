package core

import "github.com/rushteam/bookrec/pkg/utils"

// RecommendContext 承载一次查询的请求信息，贯穿整个 Pipeline 透传。
//
// 书目数据没有真实的用户维度：以书找书时，SeedItemID 即伪用户 ID（pseudo-user = item identity）。
type RecommendContext struct {
	// SeedItemID 是以书找书的种子书籍 ID；为 0 且 HasSeed 为 false 时表示无种子
	SeedItemID int64
	HasSeed    bool

	Scene string // author / rating / expr / recommend / popular

	// Labels 是请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级参数，例如：author、min_rating、expr
	Params map[string]any
}

// NewSeedContext 创建以 seed 为种子的上下文。
func NewSeedContext(scene string, seed int64) *RecommendContext {
	return &RecommendContext{SeedItemID: seed, HasSeed: true, Scene: scene}
}

// Param 读取请求参数。
func (rctx *RecommendContext) Param(key string) (any, bool) {
	if rctx == nil || rctx.Params == nil {
		return nil, false
	}
	v, ok := rctx.Params[key]
	return v, ok
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// ParamTopK 是请求级覆盖截断条数的参数名，由 rerank.topn 读取。
const ParamTopK = "top_k"
