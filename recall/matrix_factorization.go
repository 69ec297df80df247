package recall

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/utils"
)

// MFStore 是矩阵分解的存储接口，用于获取伪用户和物品的隐向量。
type MFStore interface {
	// GetUserVector 获取伪用户（即种子书籍）的隐向量，不存在时返回 NOT_FOUND
	GetUserVector(ctx context.Context, userID int64) ([]float64, error)

	// GetItemVector 获取物品的隐向量，不存在时返回 NOT_FOUND
	GetItemVector(ctx context.Context, itemID int64) ([]float64, error)

	// GetAllItemVectors 获取全部候选物品的隐向量，返回值只读
	GetAllItemVectors(ctx context.Context) (map[int64][]float64, error)
}

// MFRecall 是基于矩阵分解（Matrix Factorization）的以书找书召回源。
//
// 书目数据没有真实用户，种子书籍的 user-factor 行充当伪用户向量：
//
//	score(i) = userFactors[seed] · itemFactors[i]
//
// 结果按分数降序、同分按 ID 升序排列，并排除种子本身。
//
// Label：recall_source=mf
type MFRecall struct {
	Store MFStore

	// Books 用于补充 Meta["book"]（可选）
	Books BookLookup

	// TopK 返回条数；<= 0 表示返回全部候选，由后续 rerank.topn 截断
	TopK int
}

func (r *MFRecall) Name() string        { return "recall.mf" }
func (r *MFRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *MFRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

type scoredItem struct {
	itemID int64
	score  float64
}

func (r *MFRecall) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil || rctx == nil || !rctx.HasSeed {
		return nil, nil
	}
	seed := rctx.SeedItemID

	userVector, err := r.Store.GetUserVector(ctx, seed)
	if err != nil {
		return nil, err
	}
	if len(userVector) == 0 {
		return nil, nil
	}

	allItemVectors, err := r.Store.GetAllItemVectors(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]scoredItem, 0, len(allItemVectors))
	for itemID, itemVector := range allItemVectors {
		if itemID == seed || len(itemVector) != len(userVector) {
			continue
		}
		scores = append(scores, scoredItem{
			itemID: itemID,
			score:  floats.Dot(userVector, itemVector),
		})
	}

	sortScored(scores)

	if r.TopK > 0 && len(scores) > r.TopK {
		scores = scores[:r.TopK]
	}

	out := make([]*core.Item, 0, len(scores))
	for _, s := range scores {
		it := newBookItem(r.Books, s.itemID)
		it.Score = s.score
		it.PutLabel("recall_source", utils.RecallLabel("mf"))
		out = append(out, it)
	}
	return out, nil
}

// sortScored 按分数降序排列，同分按 ID 升序，保证结果确定。
func sortScored(s []scoredItem) {
	sort.Slice(s, func(i, j int) bool {
		if s[i].score != s[j].score {
			return s[i].score > s[j].score
		}
		return s[i].itemID < s[j].itemID
	})
}
