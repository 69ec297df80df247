package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/pipeline"
	"github.com/rushteam/bookrec/recall"
)

// 使用配置驱动时，需在入口处 import _ "github.com/rushteam/bookrec/config/builders"
// 以触发内置 Node（recall.catalog、recall.mf、filter、rerank.topn 等）的 init 注册。

// Dependencies 是构建 Node 时需要的运行期依赖，由引擎在训练完成后提供。
// 未提供的依赖为 nil，需要它的 Node 在构建时报 CONFIGURATION。
type Dependencies struct {
	Catalog *catalog.Catalog
	MF      recall.MFStore
	Store   core.Store
}

// NodeBuilder 根据 config 与运行期依赖构建 Node。
// 各组件在 init 中调用 Register(typeName, builder) 即可被配置驱动。
type NodeBuilder func(cfg map[string]any, deps Dependencies) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
// 建议在各组件的 init 中调用，例如：func init() { config.Register("recall.hot", BuildHotNode) }
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示与校验。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回绑定了 deps 的 NodeFactory，包含所有通过 Register 注册的 Node 类型。
func DefaultFactory(deps Dependencies) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return builder(cfg, deps)
		})
	}
	return f
}

// ValidatePipelineConfig 校验 pipeline 配置中所有 node 类型均已注册；若有未支持类型则返回包含已支持列表的错误。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return core.NewConfigurationError(core.ModuleConfig, "pipeline %q has no nodes", cfg.Pipeline.Name)
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for i, nc := range cfg.Pipeline.Nodes {
		if _, ok := defaultBuilders[nc.Type]; !ok {
			supported := make([]string, 0, len(defaultBuilders))
			for t := range defaultBuilders {
				supported = append(supported, t)
			}
			sort.Strings(supported)
			return core.NewConfigurationError(core.ModuleConfig,
				"pipeline %q node #%d: unsupported node type %q (supported: %v)", cfg.Pipeline.Name, i, nc.Type, supported)
		}
	}
	return nil
}

// BuildPipeline 校验并构建 pipeline，构建失败统一包装为 CONFIGURATION。
func BuildPipeline(cfg *pipeline.Config, deps Dependencies) (*pipeline.Pipeline, error) {
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	p, err := cfg.BuildPipeline(DefaultFactory(deps))
	if err != nil {
		if core.IsDomainError(err) {
			return nil, err
		}
		return nil, core.NewConfigurationError(core.ModuleConfig, "pipeline %q", cfg.Pipeline.Name).WithCause(err)
	}
	return p, nil
}

// MissingDependency 返回缺少运行期依赖时的 CONFIGURATION 错误。
func MissingDependency(nodeType, dep string) error {
	return core.NewConfigurationError(core.ModuleConfig, "%s requires %s", nodeType, dep)
}

// InvalidNodeConfig 返回 Node 配置非法时的 CONFIGURATION 错误。
func InvalidNodeConfig(nodeType, format string, args ...any) error {
	return core.NewConfigurationError(core.ModuleConfig, "%s: %s", nodeType, fmt.Sprintf(format, args...))
}
