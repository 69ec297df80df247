package recall

import (
	"context"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
)

// ModelMFAdapter 把训练好的 model.FactorModel 适配为 MFStore。
//
// 候选集限定为书目中真实存在的 ID：矩阵维度是 maxID+1，中间空缺的 ID 不会被推荐。
// 物品向量在构造时拷贝一次，之后只读，可并发使用。
type ModelMFAdapter struct {
	model *model.FactorModel
	items map[int64][]float64
}

// NewModelMFAdapter 创建适配器，candidates 为候选书籍 ID（通常是 catalog.IDs()）。
func NewModelMFAdapter(m *model.FactorModel, candidates []int64) *ModelMFAdapter {
	items := make(map[int64][]float64, len(candidates))
	for _, id := range candidates {
		if v, ok := m.ItemVector(id); ok {
			items[id] = v
		}
	}
	return &ModelMFAdapter{model: m, items: items}
}

func (a *ModelMFAdapter) Name() string { return "model_mf_adapter" }

func (a *ModelMFAdapter) GetUserVector(_ context.Context, userID int64) ([]float64, error) {
	if _, ok := a.items[userID]; !ok {
		return nil, core.NewNotFoundError(core.ModuleRecall, "book %d not found", userID)
	}
	v, _ := a.model.UserVector(userID)
	return v, nil
}

func (a *ModelMFAdapter) GetItemVector(_ context.Context, itemID int64) ([]float64, error) {
	v, ok := a.items[itemID]
	if !ok {
		return nil, core.NewNotFoundError(core.ModuleRecall, "book %d not found", itemID)
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

func (a *ModelMFAdapter) GetAllItemVectors(context.Context) (map[int64][]float64, error) {
	return a.items, nil
}

var _ MFStore = (*ModelMFAdapter)(nil)
