package filter

import (
	"context"
	"sync"
	"time"

	"github.com/rushteam/bookrec/core"
)

// DefaultBlacklistRefresh 是从 Store 重新读取黑名单的默认间隔。
const DefaultBlacklistRefresh = 30 * time.Second

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单书籍 ID 列表，key 不存在时返回空列表
	GetBlacklist(ctx context.Context, key string) ([]int64, error)
}

// BlacklistFilter 是黑名单过滤器，过滤掉下架/屏蔽的书籍。
// 内存列表与 Store 中的列表取并集；Store 的结果按 Refresh 间隔缓存。
type BlacklistFilter struct {
	// ItemIDs 是内存中的黑名单
	ItemIDs []int64

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key
	Key string

	// Refresh 为 0 时使用 DefaultBlacklistRefresh，负数表示每次都读取
	Refresh time.Duration

	mu       sync.Mutex
	cached   map[int64]struct{}
	loadedAt time.Time
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []int64, store BlacklistStore, key string) *BlacklistFilter {
	return &BlacklistFilter{
		ItemIDs: itemIDs,
		Store:   store,
		Key:     key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) storeSet(ctx context.Context) (map[int64]struct{}, error) {
	if f.Store == nil || f.Key == "" {
		return nil, nil
	}
	refresh := f.Refresh
	if refresh == 0 {
		refresh = DefaultBlacklistRefresh
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil && refresh > 0 && time.Since(f.loadedAt) < refresh {
		return f.cached, nil
	}

	ids, err := f.Store.GetBlacklist(ctx, f.Key)
	if err != nil {
		return f.cached, err
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	f.cached, f.loadedAt = set, time.Now()
	return set, nil
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.ItemIDs {
		if item.ID == id {
			return true, nil
		}
	}

	set, err := f.storeSet(ctx)
	if _, ok := set[item.ID]; ok {
		return true, nil
	}
	return false, err
}
