package filter

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤：表达式为 true 的书籍保留。
// Invert 为 true 时反过来，表达式为 true 的被剔除。
type ExprFilter struct {
	// Expr 为空时读取请求参数 expr
	Expr   string
	Invert bool

	prg *dsl.Program
}

// NewExprFilter 预编译表达式，编译失败返回 INVALID_INPUT。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Expr: expr, Invert: invert, prg: prg}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) program(rctx *core.RecommendContext) (*dsl.Program, error) {
	if f.prg != nil {
		return f.prg, nil
	}
	expr := f.Expr
	if expr == "" {
		if v, ok := rctx.Param(ParamExpr); ok {
			expr, _ = v.(string)
		}
	}
	if expr == "" {
		return nil, nil
	}
	return dsl.Compile(expr)
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	prg, err := f.program(rctx)
	if err != nil || prg == nil {
		return false, err
	}
	ok, err := prg.Eval(item, rctx)
	if err != nil {
		return true, err
	}
	return ok == f.Invert, nil
}
