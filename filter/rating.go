package filter

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/conv"
)

// ParseMinRating 解析评分阈值：去空白后按十进制浮点数解析，NaN/±Inf 视为非法。
func ParseMinRating(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, core.NewInvalidArgumentError(core.ModuleFilter, "invalid rating %q", s).WithCause(err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewInvalidArgumentError(core.ModuleFilter, "invalid rating %q", s)
	}
	return v, nil
}

// RatingFilter 保留 average_rating >= Min 的书籍（含等于）。
type RatingFilter struct {
	Min float64

	// FromParams 为 true 时读取请求参数 min_rating（float64 或字符串），覆盖 Min
	FromParams bool
}

func (f *RatingFilter) Name() string { return "filter.rating" }

func (f *RatingFilter) threshold(rctx *core.RecommendContext) (float64, error) {
	if !f.FromParams {
		return f.Min, nil
	}
	v, ok := rctx.Param(ParamMinRating)
	if !ok {
		return f.Min, nil
	}
	if s, ok := v.(string); ok {
		return ParseMinRating(s)
	}
	if fv, ok := conv.ToFloat64(v); ok && !math.IsNaN(fv) && !math.IsInf(fv, 0) {
		return fv, nil
	}
	return 0, core.NewInvalidArgumentError(core.ModuleFilter, "invalid rating %v", v)
}

func (f *RatingFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	threshold, err := f.threshold(rctx)
	if err != nil {
		return false, err
	}
	b, ok := core.BookOf(item)
	if !ok {
		return true, nil
	}
	return b.AverageRating < threshold, nil
}
