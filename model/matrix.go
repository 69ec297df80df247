package model

import (
	"math"
	"sort"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
)

// Entry 是稀疏矩阵中的一个非零元素：Index 为另一轴的下标，Weight 为置信度权重。
type Entry struct {
	Index  int
	Weight float64
}

// Triplet 是 COO 格式的一个元素。
type Triplet struct {
	Row    int
	Col    int
	Weight float64
}

// InteractionMatrix 是 (伪)用户 × 物品 的稀疏隐式反馈矩阵。
//
// 行为伪用户，列为物品，两轴都以书籍 ID 为下标，维度为 (maxID+1) × (maxID+1)。
// 书目数据只有物品级聚合信号，没有真实用户：伪用户即书籍自身，矩阵只有对角线非零，
// 这是数据建模上的约束，而不是一张真实的用户-物品矩阵。
//
// 构建完成后只读。
type InteractionMatrix struct {
	dim  int
	rows [][]Entry // rows[u] 按 Index 升序
	cols [][]Entry // cols[i] 按 Index 升序
	nnz  int
}

// MatrixOption 配置 BuildInteractionMatrix。
type MatrixOption func(*matrixOptions)

type matrixOptions struct {
	maxID int64
}

// WithMaxID 设置允许的最大书籍 ID，默认 core.DefaultMaxBookID；<= 0 时只受 int32 上限约束。
// 矩阵与隐向量按 maxID+1 行分配，ID 过大时直接返回 CONFIGURATION 而不是耗尽内存。
func WithMaxID(id int64) MatrixOption {
	return func(o *matrixOptions) { o.maxID = id }
}

// BuildInteractionMatrix 由书目构建交互矩阵：对角元素 (i, i) = ratings_count(i)。
// ratings_count 为 0 的书籍不产生非零元素（视为未观测）。
func BuildInteractionMatrix(c *catalog.Catalog, opts ...MatrixOption) (*InteractionMatrix, error) {
	o := matrixOptions{maxID: core.DefaultMaxBookID}
	for _, opt := range opts {
		opt(&o)
	}
	if c == nil || c.Len() == 0 {
		return nil, core.NewConfigurationError(core.ModuleModel, "cannot build interaction matrix from an empty catalog")
	}
	if o.maxID <= 0 || o.maxID > math.MaxInt32 {
		o.maxID = math.MaxInt32
	}
	if c.MaxID() > o.maxID {
		return nil, core.NewConfigurationError(core.ModuleModel, "book id %d exceeds the maximum %d", c.MaxID(), o.maxID)
	}
	triplets := make([]Triplet, 0, c.Len())
	var err error
	c.Each(func(b core.Book) bool {
		if b.ID < 0 || b.ID > math.MaxInt32 {
			err = core.NewConfigurationError(core.ModuleModel, "book id %d out of range", b.ID)
			return false
		}
		triplets = append(triplets, Triplet{Row: int(b.ID), Col: int(b.ID), Weight: float64(b.RatingsCount)})
		return true
	})
	if err != nil {
		return nil, err
	}
	return NewInteractionMatrix(int(c.MaxID())+1, triplets)
}

// NewInteractionMatrix 从 COO 三元组构建 dim × dim 的稀疏矩阵。
// 重复坐标的权重累加；权重为 0 的元素不存储；负权重或越界坐标返回 CONFIGURATION 错误。
func NewInteractionMatrix(dim int, triplets []Triplet) (*InteractionMatrix, error) {
	if dim <= 0 {
		return nil, core.NewConfigurationError(core.ModuleModel, "interaction matrix dimension must be positive, got %d", dim)
	}

	acc := make(map[[2]int]float64, len(triplets))
	for _, t := range triplets {
		if t.Row < 0 || t.Row >= dim || t.Col < 0 || t.Col >= dim {
			return nil, core.NewConfigurationError(core.ModuleModel, "entry (%d, %d) outside %dx%d matrix", t.Row, t.Col, dim, dim)
		}
		if t.Weight < 0 || math.IsNaN(t.Weight) || math.IsInf(t.Weight, 0) {
			return nil, core.NewConfigurationError(core.ModuleModel, "entry (%d, %d) has invalid weight %v", t.Row, t.Col, t.Weight)
		}
		acc[[2]int{t.Row, t.Col}] += t.Weight
	}

	m := &InteractionMatrix{
		dim:  dim,
		rows: make([][]Entry, dim),
		cols: make([][]Entry, dim),
	}
	for k, w := range acc {
		if w == 0 {
			continue
		}
		r, c := k[0], k[1]
		m.rows[r] = append(m.rows[r], Entry{Index: c, Weight: w})
		m.cols[c] = append(m.cols[c], Entry{Index: r, Weight: w})
		m.nnz++
	}
	for _, es := range m.rows {
		sortEntries(es)
	}
	for _, es := range m.cols {
		sortEntries(es)
	}
	return m, nil
}

func sortEntries(es []Entry) {
	if len(es) > 1 {
		sort.Slice(es, func(i, j int) bool { return es[i].Index < es[j].Index })
	}
}

// Dim 返回矩阵边长（maxID + 1）。
func (m *InteractionMatrix) Dim() int { return m.dim }

// NNZ 返回非零元素个数。
func (m *InteractionMatrix) NNZ() int { return m.nnz }

// At 返回 (row, col) 处的权重，越界或未观测返回 0。
func (m *InteractionMatrix) At(row, col int) float64 {
	if row < 0 || row >= m.dim {
		return 0
	}
	es := m.rows[row]
	i := sort.Search(len(es), func(i int) bool { return es[i].Index >= col })
	if i < len(es) && es[i].Index == col {
		return es[i].Weight
	}
	return 0
}

// Row 返回伪用户 row 观测到的物品；返回值只读。
func (m *InteractionMatrix) Row(row int) []Entry {
	if row < 0 || row >= m.dim {
		return nil
	}
	return m.rows[row]
}

// Col 返回观测到物品 col 的伪用户；返回值只读。
func (m *InteractionMatrix) Col(col int) []Entry {
	if col < 0 || col >= m.dim {
		return nil
	}
	return m.cols[col]
}
