package engine

import (
	"github.com/rushteam/bookrec/config"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
)

type options struct {
	settings  config.Settings
	store     core.Store
	pipelines map[string]*pipeline.Config
}

// Option 配置 Engine。
type Option func(*options)

// WithSettings 使用给定配置，默认 config.DefaultSettings()。
func WithSettings(s config.Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithStore 使用外部存储（热门列表与黑名单），Engine 不负责关闭它。
// 未指定时按配置打开，Close 时关闭。
func WithStore(s core.Store) Option {
	return func(o *options) { o.store = s }
}

// WithPipelineConfig 替换内置的某条查询 Pipeline（author / rating / expr / recommend / popular）。
func WithPipelineConfig(name string, cfg *pipeline.Config) Option {
	return func(o *options) {
		if o.pipelines == nil {
			o.pipelines = make(map[string]*pipeline.Config)
		}
		o.pipelines[name] = cfg
	}
}
