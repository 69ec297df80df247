package core

import "github.com/rushteam/bookrec/pkg/utils"

// Item 是 Pipeline 中流转的一本候选书。
//
// Book 为空表示召回源只给出了 ID（例如热门列表里已不在书目中的 ID），
// 过滤节点按"无属性"处理。Score 只在打分类查询中有意义。
type Item struct {
	ID       int64
	Score    float64
	Book     *Book
	Features map[string]float64
	Labels   map[string]utils.Label
}

// NewItem 创建只有 ID 的 Item。
func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；同名 key 按 MergeLabel 累积来源。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Label 读取 Label 的值，不存在时返回空串。
func (it *Item) Label(key string) string {
	return it.Labels[key].Value
}
