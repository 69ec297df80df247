// Package dsl 用 CEL (Common Expression Language) 对书籍做表达式过滤。
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/bookrec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	programs sync.Map // expr -> *Program
)

func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("book", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("label", cel.MapType(cel.StringType, cel.StringType)),
		cel.Variable("rctx", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，可被多个 goroutine 并发执行。
//
// 可用变量：
//   - book：id / title / authors / average_rating / num_pages / ratings_count /
//     text_reviews_count / language_code / publisher / publication_date / isbn / isbn13
//   - item：id / score / features
//   - label：召回/过滤标签的 value，例如 label.recall_source
//   - rctx：seed / scene / params
//
// 示例：
//   - `book.authors == "J.K. Rowling" && book.average_rating >= 4.5`
//   - `book.num_pages < 300 && book.language_code == "eng"`
//   - `"recall_source" in label && label.recall_source.contains("mf")`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，编译失败或结果类型不是 bool 时返回 INVALID_INPUT。
// 相同表达式只编译一次。
func Compile(expr string) (*Program, error) {
	if p, ok := programs.Load(expr); ok {
		return p.(*Program), nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.NewInvalidArgumentError(core.ModuleFilter, "expr %q: compile error", expr).WithCause(issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, core.NewInvalidArgumentError(core.ModuleFilter, "expr %q must return bool, got %s", expr, t)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.NewInvalidArgumentError(core.ModuleFilter, "expr %q: program error", expr).WithCause(err)
	}

	p := &Program{expr: expr, prg: prg}
	actual, _ := programs.LoadOrStore(expr, p)
	return actual.(*Program), nil
}

func (p *Program) String() string { return p.expr }

// Eval 对单个 Item 求值。访问不存在的 key 会返回错误，应先用 `"key" in label` 判断。
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// Evaluate 编译（或复用缓存）并执行表达式；空表达式恒为 true。
func Evaluate(expr string, item *core.Item, rctx *core.RecommendContext) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Eval(item, rctx)
}

func bookMap(b core.Book) map[string]any {
	return map[string]any{
		"id":                 b.ID,
		"title":              b.Title,
		"authors":            b.Authors,
		"average_rating":     b.AverageRating,
		"num_pages":          b.NumPages,
		"ratings_count":      b.RatingsCount,
		"text_reviews_count": b.TextReviewsCount,
		"language_code":      b.LanguageCode,
		"publisher":          b.Publisher,
		"publication_date":   b.PublicationDate,
		"isbn":               b.ISBN,
		"isbn13":             b.ISBN13,
	}
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	book := map[string]any{}
	item := map[string]any{}
	labels := map[string]string{}
	if it != nil {
		if b, ok := core.BookOf(it); ok {
			book = bookMap(b)
		}
		item["id"] = it.ID
		item["score"] = it.Score
		item["features"] = it.Features
		for k, v := range it.Labels {
			labels[k] = v.Value
		}
	}

	rc := map[string]any{}
	if rctx != nil {
		if rctx.HasSeed {
			rc["seed"] = rctx.SeedItemID
		}
		rc["scene"] = rctx.Scene
		params := rctx.Params
		if params == nil {
			params = map[string]any{}
		}
		rc["params"] = params
	}

	return map[string]any{
		"book":  book,
		"item":  item,
		"label": labels,
		"rctx":  rc,
	}
}
