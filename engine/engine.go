// Package engine 是推荐引擎的门面：加载书目、训练 ALS 模型，并对外提供属性过滤与以书找书查询。
//
// Engine 构建完成后只读，所有查询方法可并发调用。
package engine

import (
	"context"
	"math"
	"time"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/config"
	_ "github.com/rushteam/bookrec/config/builders"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/filter"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/dsl"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/recall"
	"github.com/rushteam/bookrec/rerank"
	"github.com/rushteam/bookrec/store"
)

// FilterResult 是属性过滤的结果。
type FilterResult struct {
	Books []core.Book // 书目顺序，最多 PageSize 条
	Found bool        // 是否有匹配
	Total int         // 截断前的匹配总数
}

// Engine 持有书目、交互矩阵、训练好的隐因子模型以及各查询 Pipeline。
type Engine struct {
	settings  config.Settings
	catalog   *catalog.Catalog
	matrix    *model.InteractionMatrix
	model     *model.FactorModel
	store     core.Store
	ownsStore bool
	pipelines map[string]*pipeline.Pipeline
}

// Open 按配置加载书目文件并构建 Engine。
func Open(ctx context.Context, s config.Settings, opts ...Option) (*Engine, error) {
	cat, err := catalog.LoadFile(s.Catalog.Path, catalog.WithComma(s.CatalogComma()))
	if err != nil {
		return nil, err
	}
	return New(ctx, cat, append([]Option{WithSettings(s)}, opts...)...)
}

// New 从已加载的书目构建 Engine：构建交互矩阵 → 训练 ALS → 写入热门列表 → 组装 Pipeline。
//
// 空书目或非法参数返回 CONFIGURATION；训练中出现奇异矩阵返回 NUMERICAL。
func New(ctx context.Context, cat *catalog.Catalog, opts ...Option) (*Engine, error) {
	o := options{settings: config.DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.settings.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := logging.Component("engine")

	im, err := model.BuildInteractionMatrix(cat, model.WithMaxID(o.settings.Model.MaxBookID))
	if err != nil {
		return nil, err
	}
	fm, err := model.TrainALS(ctx, im, o.settings.ALSConfig())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		settings: o.settings,
		catalog:  cat,
		matrix:   im,
		model:    fm,
		store:    o.store,
	}
	if e.store == nil {
		s, err := store.Open(ctx, o.settings.StoreOptions())
		if err != nil {
			return nil, err
		}
		e.store, e.ownsStore = s, true
	}

	if err := recall.SeedHot(ctx, e.store, o.settings.Query.PopularKey, cat); err != nil {
		_ = e.Close()
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeUnavailable, "seed popularity list").WithCause(err)
	}

	if err := e.buildPipelines(o.pipelines); err != nil {
		_ = e.Close()
		return nil, err
	}

	log.Info().
		Int("books", cat.Len()).
		Int64("max_id", cat.MaxID()).
		Int("observed", im.NNZ()).
		Str("store", e.store.Name()).
		Dur("took", time.Since(start)).
		Msg("engine ready")
	return e, nil
}

func (e *Engine) buildPipelines(overrides map[string]*pipeline.Config) error {
	cfgs := defaultPipelines(e.settings)
	for name, cfg := range overrides {
		cfgs[name] = cfg
	}

	deps := config.Dependencies{
		Catalog: e.catalog,
		MF:      recall.NewModelMFAdapter(e.model, e.catalog.IDs()),
		Store:   e.store,
	}
	e.pipelines = make(map[string]*pipeline.Pipeline, len(cfgs))
	for name, cfg := range cfgs {
		p, err := config.BuildPipeline(cfg, deps)
		if err != nil {
			return err
		}
		e.pipelines[name] = p
	}
	return nil
}

// Close 释放 Engine 自行打开的存储。
func (e *Engine) Close() error {
	if e.ownsStore && e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Catalog 返回书目。
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Model 返回训练好的隐因子模型。
func (e *Engine) Model() *model.FactorModel { return e.model }

// Matrix 返回交互矩阵。
func (e *Engine) Matrix() *model.InteractionMatrix { return e.matrix }

// Settings 返回构建时使用的配置。
func (e *Engine) Settings() config.Settings { return e.settings }

// Book 按 ID 查书。
func (e *Engine) Book(id int64) (core.Book, bool) { return e.catalog.Get(id) }

// Authors 返回去重排序后的作者列表，供展示层填充选项。
func (e *Engine) Authors() []string { return e.catalog.Authors() }

// RatingOptions 返回去重后降序排列的平均分列表，供展示层填充选项。
func (e *Engine) RatingOptions() []float64 { return e.catalog.RatingOptions() }

func (e *Engine) run(ctx context.Context, name string, rctx *core.RecommendContext) ([]*core.Item, error) {
	p, ok := e.pipelines[name]
	if !ok {
		return nil, core.NewConfigurationError(core.ModuleEngine, "pipeline %q not configured", name)
	}
	return p.Run(ctx, rctx, nil)
}

func (e *Engine) filter(ctx context.Context, name string, params map[string]any) (FilterResult, error) {
	rctx := &core.RecommendContext{Scene: name, Params: params}
	items, err := e.run(ctx, name, rctx)
	if err != nil {
		return FilterResult{}, err
	}

	res := FilterResult{Books: make([]core.Book, 0, len(items))}
	for _, it := range items {
		if b, ok := core.BookOf(it); ok {
			res.Books = append(res.Books, b)
		}
	}
	res.Found = len(res.Books) > 0
	res.Total = rerank.Total(rctx)
	if res.Total < len(res.Books) {
		res.Total = len(res.Books)
	}
	return res, nil
}

// FilterByAuthor 返回 authors 与 name（去首尾空白）完全相等的书，大小写敏感。
// 无匹配时 Found 为 false，不视为错误；Pipeline 执行失败时返回错误。
func (e *Engine) FilterByAuthor(name string) (FilterResult, error) {
	res, err := e.filter(context.Background(), PipelineAuthor, map[string]any{filter.ParamAuthor: name})
	metrics.RecordQuery(PipelineAuthor, len(res.Books), err)
	return res, err
}

// FilterByRating 解析 minRating 后返回 average_rating >= minRating 的书。
// minRating 无法解析为有限数时返回 INVALID_INPUT。
func (e *Engine) FilterByRating(minRating string) (FilterResult, error) {
	v, err := filter.ParseMinRating(minRating)
	if err != nil {
		metrics.RecordQuery(PipelineRating, 0, err)
		return FilterResult{}, err
	}
	return e.FilterByRatingValue(v)
}

// FilterByRatingValue 是 FilterByRating 的数值版本。
func (e *Engine) FilterByRatingValue(minRating float64) (FilterResult, error) {
	if math.IsNaN(minRating) || math.IsInf(minRating, 0) {
		err := core.NewInvalidArgumentError(core.ModuleEngine, "invalid rating %v", minRating)
		metrics.RecordQuery(PipelineRating, 0, err)
		return FilterResult{}, err
	}
	res, err := e.filter(context.Background(), PipelineRating, map[string]any{filter.ParamMinRating: minRating})
	metrics.RecordQuery(PipelineRating, len(res.Books), err)
	return res, err
}

// FilterByExpr 返回 CEL 表达式为 true 的书，例如
//
//	book.authors == "J.K. Rowling" && book.num_pages < 500
//
// 表达式编译失败或求值出错返回 INVALID_INPUT。
func (e *Engine) FilterByExpr(ctx context.Context, expr string) (FilterResult, error) {
	if _, err := dsl.Compile(expr); err != nil {
		metrics.RecordQuery(PipelineExpr, 0, err)
		return FilterResult{}, err
	}
	res, err := e.filter(ctx, PipelineExpr, map[string]any{filter.ParamExpr: expr})
	if err != nil && !core.IsDomainError(err) {
		err = core.NewInvalidArgumentError(core.ModuleEngine, "expr %q", expr).WithCause(err)
	}
	metrics.RecordQuery(PipelineExpr, len(res.Books), err)
	return res, err
}

// Recommend 返回与种子书籍最相近的 n 本书（不含种子），按分数降序、同分按 ID 升序。
// 候选不足 n 本时全部返回。
//
// 种子不在书目中返回 NOT_FOUND；n <= 0 返回 INVALID_INPUT。
func (e *Engine) Recommend(ctx context.Context, seed int64, n int) ([]*core.Item, error) {
	items, err := e.recommend(ctx, seed, n)
	metrics.RecordQuery(PipelineRecommend, len(items), err)
	return items, err
}

func (e *Engine) recommend(ctx context.Context, seed int64, n int) ([]*core.Item, error) {
	if n <= 0 {
		return nil, core.NewInvalidArgumentError(core.ModuleEngine, "n must be positive, got %d", n)
	}
	if !e.catalog.Has(seed) {
		return nil, core.NewNotFoundError(core.ModuleEngine, "book %d not found", seed)
	}
	rctx := core.NewSeedContext(PipelineRecommend, seed)
	rctx.Params = map[string]any{core.ParamTopK: n}
	return e.run(ctx, PipelineRecommend, rctx)
}

// RecommendDefault 使用配置中的默认条数（默认 5）调用 Recommend。
func (e *Engine) RecommendDefault(ctx context.Context, seed int64) ([]*core.Item, error) {
	return e.Recommend(ctx, seed, e.settings.Query.RecommendCount)
}

// Popular 返回 ratings_count 最高的 n 本书。n <= 0 返回 INVALID_INPUT。
func (e *Engine) Popular(ctx context.Context, n int) ([]*core.Item, error) {
	if n <= 0 {
		err := core.NewInvalidArgumentError(core.ModuleEngine, "n must be positive, got %d", n)
		metrics.RecordQuery(PipelinePopular, 0, err)
		return nil, err
	}
	rctx := &core.RecommendContext{Scene: PipelinePopular, Params: map[string]any{core.ParamTopK: n}}
	items, err := e.run(ctx, PipelinePopular, rctx)
	metrics.RecordQuery(PipelinePopular, len(items), err)
	return items, err
}

// SetBlacklist 覆盖写入黑名单；仅在配置 query.blacklist 开启时影响 Recommend 与 Popular。
func (e *Engine) SetBlacklist(ctx context.Context, ids []int64) error {
	return filter.NewStoreAdapter(e.store).SetBlacklist(ctx, e.settings.Query.BlacklistKey, ids)
}
