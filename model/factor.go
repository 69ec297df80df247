package model

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FactorModel 是 ALS 训练得到的隐向量模型。
//
// 物品隐向量与伪用户隐向量都以书籍 ID 为行下标，列数为 k。
// 训练完成后不可变，读取方法不加锁，可被并发查询共享。
type FactorModel struct {
	itemFactors *mat.Dense // dim × k
	userFactors *mat.Dense // dim × k
}

func newFactorModel(items, users *mat.Dense) *FactorModel {
	return &FactorModel{itemFactors: items, userFactors: users}
}

// Name 实现模型命名约定，用于日志/Label。
func (m *FactorModel) Name() string { return "als" }

// Factors 返回隐向量维度 k。
func (m *FactorModel) Factors() int {
	_, k := m.itemFactors.Dims()
	return k
}

// Dim 返回行数（maxID + 1）。
func (m *FactorModel) Dim() int {
	r, _ := m.itemFactors.Dims()
	return r
}

func (m *FactorModel) inRange(id int64) bool {
	return id >= 0 && id < int64(m.Dim())
}

// ItemVector 返回物品隐向量的副本。
func (m *FactorModel) ItemVector(id int64) ([]float64, bool) {
	if !m.inRange(id) {
		return nil, false
	}
	return copyRow(m.itemFactors, int(id)), true
}

// UserVector 返回伪用户隐向量的副本。
func (m *FactorModel) UserVector(id int64) ([]float64, bool) {
	if !m.inRange(id) {
		return nil, false
	}
	return copyRow(m.userFactors, int(id)), true
}

// Score 返回伪用户 user 对物品 item 的亲和度（隐向量点积）；越界返回 0。
func (m *FactorModel) Score(user, item int64) float64 {
	if !m.inRange(user) || !m.inRange(item) {
		return 0
	}
	return floats.Dot(m.userFactors.RawRowView(int(user)), m.itemFactors.RawRowView(int(item)))
}

// ScoreItems 计算伪用户 user 对 items 中每个物品的亲和度，结果与 items 一一对应。
func (m *FactorModel) ScoreItems(user int64, items []int64) []float64 {
	out := make([]float64, len(items))
	if !m.inRange(user) {
		return out
	}
	u := m.userFactors.RawRowView(int(user))
	for i, id := range items {
		if m.inRange(id) {
			out[i] = floats.Dot(u, m.itemFactors.RawRowView(int(id)))
		}
	}
	return out
}

// ItemFactors 返回物品隐向量矩阵的副本。
func (m *FactorModel) ItemFactors() *mat.Dense { return mat.DenseCopyOf(m.itemFactors) }

// UserFactors 返回伪用户隐向量矩阵的副本。
func (m *FactorModel) UserFactors() *mat.Dense { return mat.DenseCopyOf(m.userFactors) }

// Loss 计算隐式反馈 ALS 的目标函数值：
//
//	Σ_{u,i} c_ui (p_ui − x_u·y_i)² + λ (‖X‖² + ‖Y‖²)
//
// 未观测元素 c=1、p=0；观测元素 c=权重、p=1。
// 全量项 Σ (x_u·y_i)² 用 tr((XᵀX)(YᵀY)) 计算，避免遍历 dim² 个元素。
func (m *FactorModel) Loss(im *InteractionMatrix, lambda float64) float64 {
	var xtx, yty mat.SymDense
	xtx.SymOuterK(1, m.userFactors.T())
	yty.SymOuterK(1, m.itemFactors.T())
	var prod mat.Dense
	prod.Mul(&xtx, &yty)
	loss := mat.Trace(&prod)

	for u := 0; u < im.Dim(); u++ {
		for _, e := range im.Row(u) {
			s := floats.Dot(m.userFactors.RawRowView(u), m.itemFactors.RawRowView(e.Index))
			loss += e.Weight*(1-s)*(1-s) - s*s
		}
	}

	loss += lambda * (frobenius2(m.userFactors) + frobenius2(m.itemFactors))
	return loss
}

func frobenius2(a *mat.Dense) float64 {
	n := mat.Norm(a, 2)
	return n * n
}

func copyRow(a *mat.Dense, i int) []float64 {
	_, k := a.Dims()
	out := make([]float64, k)
	copy(out, a.RawRowView(i))
	return out
}
