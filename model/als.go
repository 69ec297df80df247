package model

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/metrics"
	"github.com/rushteam/bookrec/pkg/logging"
)

// ALSConfig 是 ALS 训练配置。
type ALSConfig struct {
	// Factors 是隐向量维度 k
	Factors int

	// Regularization 是 L2 正则强度 λ，作用于两个隐向量矩阵
	Regularization float64

	// Iterations 是固定的迭代次数，不做收敛判断
	Iterations int

	// Seed 是隐向量随机初始化的种子；相同种子、相同输入得到相同模型
	Seed uint64

	// Workers 是单侧求解的并发数，<= 0 时使用 runtime.GOMAXPROCS(0)
	Workers int
}

// DefaultALSConfig 返回默认配置：k=50, λ=0.1, 20 轮。
func DefaultALSConfig() ALSConfig {
	return ALSConfig{
		Factors:        core.DefaultFactors,
		Regularization: core.DefaultRegularization,
		Iterations:     core.DefaultIterations,
	}
}

// Validate 校验配置，非法时返回 CONFIGURATION 错误。
func (c ALSConfig) Validate() error {
	if c.Factors <= 0 {
		return core.NewConfigurationError(core.ModuleModel, "als: factors must be positive, got %d", c.Factors)
	}
	if c.Iterations <= 0 {
		return core.NewConfigurationError(core.ModuleModel, "als: iterations must be positive, got %d", c.Iterations)
	}
	if c.Regularization < 0 || math.IsNaN(c.Regularization) || math.IsInf(c.Regularization, 0) {
		return core.NewConfigurationError(core.ModuleModel, "als: regularization must be a finite non-negative number, got %v", c.Regularization)
	}
	return nil
}

// 单个 goroutine 一次处理的行数
const rowChunk = 256

// TrainALS 用交替最小二乘（Hu, Koren, Volinsky 2008）分解隐式反馈矩阵。
//
// 每轮先固定伪用户隐向量求解全部物品行，再固定物品隐向量求解全部伪用户行。
// 每行求解闭式正规方程：
//
//	A = FᵀF + λI + Σ_{j∈obs} (c_j − 1) f_j f_jᵀ
//	b = Σ_{j∈obs} c_j f_j
//
// 其中 F 为另一侧（固定）的隐向量矩阵，c_j 为观测元素的置信度权重。
// 没有观测的行 b = 0，解为零向量，直接跳过求解。
// 一侧的所有行只读取另一侧的快照，彼此独立，因此按块并发求解。
//
// 矩阵奇异（Cholesky 分解失败）或解出现非有限值时返回 NUMERICAL 错误。
func TrainALS(ctx context.Context, im *InteractionMatrix, cfg ALSConfig) (*FactorModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if im == nil || im.Dim() == 0 {
		return nil, core.NewConfigurationError(core.ModuleModel, "als: empty interaction matrix")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	log := logging.Component("als")
	start := time.Now()

	dim, k := im.Dim(), cfg.Factors
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	items := randomFactors(rng, dim, k)
	users := randomFactors(rng, dim, k)

	t := &trainer{
		im:      im,
		lambda:  cfg.Regularization,
		factors: k,
		workers: workers,
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := t.solveSide(ctx, sideItems, items, users); err != nil {
			return nil, err
		}
		if err := t.solveSide(ctx, sideUsers, users, items); err != nil {
			return nil, err
		}
		if e := log.Debug(); e.Enabled() {
			e.Int("iteration", iter+1).
				Float64("loss", newFactorModel(items, users).Loss(im, cfg.Regularization)).
				Msg("als iteration done")
		}
	}

	elapsed := time.Since(start)
	metrics.RecordTraining(elapsed, cfg.Iterations)
	log.Info().
		Int("dim", dim).
		Int("nnz", im.NNZ()).
		Object("config", cfg).
		Dur("elapsed", elapsed).
		Msg("als training finished")

	return newFactorModel(items, users), nil
}

func randomFactors(rng *rand.Rand, rows, k int) *mat.Dense {
	data := make([]float64, rows*k)
	for i := range data {
		data[i] = rng.Float64() * 0.01
	}
	return mat.NewDense(rows, k, data)
}

type side string

const (
	sideItems side = "item"
	sideUsers side = "user"
)

type trainer struct {
	im      *InteractionMatrix
	lambda  float64
	factors int
	workers int
}

// observed 返回目标侧第 r 行的观测：物品侧为矩阵的列，伪用户侧为矩阵的行。
func (t *trainer) observed(s side, r int) []Entry {
	if s == sideItems {
		return t.im.Col(r)
	}
	return t.im.Row(r)
}

// solveSide 固定 fixed，求解 target 的所有行。
func (t *trainer) solveSide(ctx context.Context, s side, target, fixed *mat.Dense) error {
	var gram mat.SymDense
	gram.SymOuterK(1, fixed.T())

	rows, _ := target.Dims()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)

	for lo := 0; lo < rows; lo += rowChunk {
		hi := min(lo+rowChunk, rows)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rs := newRowSolver(&gram, t.lambda)
			for r := lo; r < hi; r++ {
				if err := rs.solve(target, fixed, r, t.observed(s, r)); err != nil {
					return core.NewNumericalError(core.ModuleModel, "als: %s row %d", s, r).WithCause(err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

var (
	errSingular  = errors.New("regularized system is singular")
	errNonFinite = errors.New("solution is not finite")
)

// rowSolver 持有单个 goroutine 复用的缓冲区。
type rowSolver struct {
	gram   *mat.SymDense
	lambda float64
	a      *mat.SymDense
	b      *mat.VecDense
	x      *mat.VecDense
	chol   mat.Cholesky
	zero   []float64
}

func newRowSolver(gram *mat.SymDense, lambda float64) *rowSolver {
	k := gram.SymmetricDim()
	return &rowSolver{
		gram:   gram,
		lambda: lambda,
		a:      mat.NewSymDense(k, nil),
		b:      mat.NewVecDense(k, nil),
		x:      mat.NewVecDense(k, nil),
		zero:   make([]float64, k),
	}
}

func (rs *rowSolver) solve(target, fixed *mat.Dense, r int, obs []Entry) error {
	if len(obs) == 0 {
		target.SetRow(r, rs.zero)
		return nil
	}

	k := rs.gram.SymmetricDim()
	rs.a.CopySym(rs.gram)
	for i := 0; i < k; i++ {
		rs.a.SetSym(i, i, rs.a.At(i, i)+rs.lambda)
	}
	rs.b.Zero()
	for _, e := range obs {
		f := mat.NewVecDense(k, fixed.RawRowView(e.Index))
		if e.Weight != 1 {
			rs.a.SymRankOne(rs.a, e.Weight-1, f)
		}
		rs.b.AddScaledVec(rs.b, e.Weight, f)
	}

	if ok := rs.chol.Factorize(rs.a); !ok {
		return errSingular
	}
	if err := rs.chol.SolveVecTo(rs.x, rs.b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return err
		}
		// 病态但可解：结果有限即接受
		logging.Debug().Float64("condition", float64(cond)).Int("row", r).Msg("als: ill-conditioned row")
	}
	sol := rs.x.RawVector().Data
	if !allFinite(sol) {
		return errNonFinite
	}
	target.SetRow(r, sol)
	return nil
}

func allFinite(xs []float64) bool {
	for _, v := range xs {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

var _ zerolog.LogObjectMarshaler = ALSConfig{}

// MarshalZerologObject 让配置可以直接作为日志字段输出。
func (c ALSConfig) MarshalZerologObject(e *zerolog.Event) {
	e.Int("factors", c.Factors).
		Float64("regularization", c.Regularization).
		Int("iterations", c.Iterations).
		Uint64("seed", c.Seed).
		Int("workers", c.Workers)
}
