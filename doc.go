// Package bookrec 是一个书籍推荐工具包。
//
// 设计要点：
// - Pipeline-first: 查询逻辑通过 Node 串联（Recall → Filter → ReRank）
// - 以书找书: 书目的 ratings_count 构成对角交互矩阵，隐式 ALS 分解后用种子书籍的 user-factor 行打分
// - 属性过滤: 作者精确匹配、最低评分、CEL 表达式，结果保持书目顺序
//
// 入口是 engine.Open / engine.New。
package bookrec

import "github.com/rushteam/bookrec/pipeline"

// 轻量 facade：便于直接 import "bookrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)
