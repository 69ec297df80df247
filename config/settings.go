package config

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/bookrec/core"
	"github.com/rushteam/bookrec/model"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/store"
)

// EnvPrefix 是环境变量前缀：BOOKREC_MODEL_FACTORS -> model.factors。
const EnvPrefix = "BOOKREC_"

// Settings 是进程级配置。加载顺序：默认值 → YAML 文件 → 环境变量，后者覆盖前者。
type Settings struct {
	Catalog CatalogSettings `koanf:"catalog"`
	Model   ModelSettings   `koanf:"model"`
	Query   QuerySettings   `koanf:"query"`
	Store   StoreSettings   `koanf:"store"`
	Log     LogSettings     `koanf:"log"`
}

type CatalogSettings struct {
	Path  string `koanf:"path"`
	Comma string `koanf:"comma" validate:"omitempty,len=1"`
}

type ModelSettings struct {
	Factors        int     `koanf:"factors" validate:"gt=0"`
	Regularization float64 `koanf:"regularization" validate:"gte=0"`
	Iterations     int     `koanf:"iterations" validate:"gt=0"`
	Seed           uint64  `koanf:"seed"`
	Workers        int     `koanf:"workers" validate:"gte=0"`

	// MaxBookID 限制矩阵维度，0 表示只受 int32 上限约束
	MaxBookID int64 `koanf:"max_book_id" validate:"gte=0"`
}

type QuerySettings struct {
	PageSize       int    `koanf:"page_size" validate:"gt=0"`
	RecommendCount int    `koanf:"recommend_count" validate:"gt=0"`
	PopularKey     string `koanf:"popular_key" validate:"required"`
	Blacklist      bool   `koanf:"blacklist"`
	BlacklistKey   string `koanf:"blacklist_key" validate:"required_if=Blacklist true"`
}

type StoreSettings struct {
	Backend   string `koanf:"backend" validate:"oneof=memory redis"`
	RedisAddr string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB   int    `koanf:"redis_db" validate:"gte=0"`
}

type LogSettings struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled off"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// DefaultSettings 返回默认配置：k=50、λ=0.1、20 次迭代、页大小 10、默认推荐 5 条。
func DefaultSettings() Settings {
	return Settings{
		Catalog: CatalogSettings{Path: "books.csv", Comma: ","},
		Model: ModelSettings{
			Factors:        core.DefaultFactors,
			Regularization: core.DefaultRegularization,
			Iterations:     core.DefaultIterations,
			Seed:           1,
			MaxBookID:      core.DefaultMaxBookID,
		},
		Query: QuerySettings{
			PageSize:       core.DefaultPageSize,
			RecommendCount: core.DefaultRecommendCount,
			PopularKey:     core.DefaultPopularKey,
			BlacklistKey:   core.DefaultBlacklistKey,
		},
		Store: StoreSettings{Backend: store.BackendMemory, RedisAddr: "127.0.0.1:6379"},
		Log:   LogSettings{Level: "info", Format: "console"},
	}
}

// LoadSettings 加载配置。path 为空时跳过文件层。
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return nil, core.NewConfigurationError(core.ModuleConfig, "load defaults").WithCause(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, core.NewConfigurationError(core.ModuleConfig, "load config file %s", path).WithCause(err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, core.NewConfigurationError(core.ModuleConfig, "load environment").WithCause(err)
	}

	s := &Settings{}
	if err := k.Unmarshal("", s); err != nil {
		return nil, core.NewConfigurationError(core.ModuleConfig, "unmarshal settings").WithCause(err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// envTransform 把 BOOKREC_SECTION_FIELD_NAME 映射为 section.field_name。
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + field
}

var validate = validator.New()

// Validate 校验配置，失败返回 CONFIGURATION，消息中列出所有不合法字段。
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
		}
		return core.NewConfigurationError(core.ModuleConfig, "invalid settings: %s", strings.Join(fields, ", ")).WithCause(err)
	}
	return core.NewConfigurationError(core.ModuleConfig, "invalid settings").WithCause(err)
}

// ALSConfig 返回训练参数。
func (s *Settings) ALSConfig() model.ALSConfig {
	return model.ALSConfig{
		Factors:        s.Model.Factors,
		Regularization: s.Model.Regularization,
		Iterations:     s.Model.Iterations,
		Seed:           s.Model.Seed,
		Workers:        s.Model.Workers,
	}
}

// StoreOptions 返回存储后端参数。
func (s *Settings) StoreOptions() store.Options {
	return store.Options{Backend: s.Store.Backend, RedisAddr: s.Store.RedisAddr, RedisDB: s.Store.RedisDB}
}

// LogConfig 返回日志配置。
func (s *Settings) LogConfig() logging.Config {
	return logging.Config{Level: s.Log.Level, Format: s.Log.Format}
}

// CatalogComma 返回 CSV 分隔符。
func (s *Settings) CatalogComma() rune {
	if s.Catalog.Comma == "" {
		return ','
	}
	return []rune(s.Catalog.Comma)[0]
}
