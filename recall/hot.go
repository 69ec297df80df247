package recall

import (
	"context"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/pkg/utils"
)

// Hot 是热门召回源，从 Store 读取按 ratings_count 排好序的书籍列表。
//   - 如果 Store 实现了 KeyValueStore，优先使用 ZRange（有序集合，按分数降序）
//   - 否则从普通 key 读取 JSON 数组
//   - 如果 Store 为空或读取失败，使用内存中的 IDs 作为 fallback
//
// Hot 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Hot struct {
	Store core.Store
	Key   string  // 存储 key，例如 "hot:books"
	IDs   []int64 // fallback 内存列表
	Books BookLookup

	// Limit 读取条数，<= 0 表示全部
	Limit int
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
// 设置了 Books 时，列表中不在书目里的 ID 被跳过，Limit 在跳过之后生效。
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	readLimit := r.Limit
	if r.Books != nil {
		readLimit = 0
	}
	ids, err := r.load(ctx, readLimit)
	if err != nil {
		log := logging.Component("recall")
		log.Warn().Err(err).Str("key", r.Key).Msg("hot list unavailable, using fallback")
	}
	if len(ids) == 0 {
		ids = r.IDs
	}

	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		if r.Limit > 0 && len(out) == r.Limit {
			break
		}
		it := newBookItem(r.Books, id)
		b, ok := core.BookOf(it)
		if r.Books != nil && !ok {
			continue
		}
		if ok {
			it.Score = float64(b.RatingsCount)
		}
		it.PutLabel("recall_source", utils.RecallLabel("hot"))
		out = append(out, it)
	}
	return out, nil
}

func (r *Hot) load(ctx context.Context, limit int) ([]int64, error) {
	if r.Store == nil || r.Key == "" {
		return nil, nil
	}

	if kv, ok := r.Store.(core.KeyValueStore); ok {
		stop := int64(-1)
		if limit > 0 {
			stop = int64(limit) - 1
		}
		members, err := kv.ZRange(ctx, r.Key, 0, stop)
		if err != nil && !core.IsStoreNotSupported(err) {
			return nil, err
		}
		if err == nil {
			ids := make([]int64, 0, len(members))
			for _, m := range members {
				if id, err := strconv.ParseInt(m, 10, 64); err == nil {
					ids = append(ids, id)
				}
			}
			return ids, nil
		}
	}

	data, err := r.Store.Get(ctx, r.Key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SeedHot 用书目替换热门列表，分数为 ratings_count。
// KeyValueStore 先删除旧的有序集合再一次性批量写入；普通 Store 写已排序的 JSON 数组。
// 旧列表中已不在书目里的 ID 不会保留下来。
func SeedHot(ctx context.Context, s core.Store, key string, books BookIterator) error {
	var scores []scoredItem
	books.Each(func(b core.Book) bool {
		scores = append(scores, scoredItem{itemID: b.ID, score: float64(b.RatingsCount)})
		return true
	})

	if kv, ok := s.(core.KeyValueStore); ok {
		members := make([]core.ZMember, len(scores))
		for i, sc := range scores {
			members[i] = core.ZMember{Score: sc.score, Member: strconv.FormatInt(sc.itemID, 10)}
		}
		if err := kv.Delete(ctx, key); err != nil {
			return err
		}
		err := kv.ZAdd(ctx, key, members...)
		if !core.IsStoreNotSupported(err) {
			return err
		}
	}

	sortScored(scores)
	ids := make([]int64, len(scores))
	for i, sc := range scores {
		ids[i] = sc.itemID
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
