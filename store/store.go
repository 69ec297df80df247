// Package store 提供 core.Store / core.KeyValueStore 的实现，接口定义在 core 包。
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
package store

import (
	"context"

	"github.com/rushteam/bookrec/core"
)

// 后端名称
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Options 描述要打开的存储后端。
type Options struct {
	Backend   string
	RedisAddr string
	RedisDB   int
}

// Open 按 Options.Backend 打开存储，空值视为 memory。
func Open(ctx context.Context, opts Options) (core.KeyValueStore, error) {
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisAddr, opts.RedisDB)
	}
	return nil, core.NewConfigurationError(core.ModuleStore, "store: unknown backend %q", opts.Backend)
}
