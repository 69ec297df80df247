package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/bookrec/core"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	als := s.ALSConfig()
	if als.Factors != 50 || als.Regularization != 0.1 || als.Iterations != 20 {
		t.Errorf("ALSConfig() = %+v", als)
	}
	if s.Query.PageSize != 10 || s.Query.RecommendCount != 5 {
		t.Errorf("Query = %+v", s.Query)
	}
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookrec.yaml")
	data := `
catalog:
  path: /data/books.csv
model:
  factors: 8
  iterations: 3
query:
  page_size: 20
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOKREC_MODEL_ITERATIONS", "7")
	t.Setenv("BOOKREC_QUERY_RECOMMEND_COUNT", "3")
	t.Setenv("BOOKREC_STORE_REDIS_DB", "2")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Catalog.Path != "/data/books.csv" {
		t.Errorf("Catalog.Path = %q", s.Catalog.Path)
	}
	if s.Model.Factors != 8 {
		t.Errorf("Model.Factors = %d, want 8 from file", s.Model.Factors)
	}
	if s.Model.Iterations != 7 {
		t.Errorf("Model.Iterations = %d, want 7 from env", s.Model.Iterations)
	}
	if s.Model.Regularization != 0.1 {
		t.Errorf("Model.Regularization = %v, want default", s.Model.Regularization)
	}
	if s.Query.PageSize != 20 || s.Query.RecommendCount != 3 {
		t.Errorf("Query = %+v", s.Query)
	}
	if s.Store.RedisDB != 2 {
		t.Errorf("Store.RedisDB = %d", s.Store.RedisDB)
	}
	if s.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", s.Log.Level)
	}
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero factors", map[string]string{"BOOKREC_MODEL_FACTORS": "0"}},
		{"negative iterations", map[string]string{"BOOKREC_MODEL_ITERATIONS": "-1"}},
		{"negative lambda", map[string]string{"BOOKREC_MODEL_REGULARIZATION": "-0.5"}},
		{"unknown backend", map[string]string{"BOOKREC_STORE_BACKEND": "etcd"}},
		{"redis without addr", map[string]string{"BOOKREC_STORE_BACKEND": "redis", "BOOKREC_STORE_REDIS_ADDR": ""}},
		{"bad log level", map[string]string{"BOOKREC_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadSettings(""); !core.IsConfiguration(err) {
				t.Errorf("LoadSettings() error = %v, want CONFIGURATION", err)
			}
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml")); !core.IsConfiguration(err) {
		t.Errorf("error = %v, want CONFIGURATION", err)
	}
}

func TestEnvTransform(t *testing.T) {
	tests := map[string]string{
		"BOOKREC_MODEL_FACTORS":         "model.factors",
		"BOOKREC_STORE_REDIS_ADDR":      "store.redis_addr",
		"BOOKREC_QUERY_RECOMMEND_COUNT": "query.recommend_count",
		"BOOKREC_CONFIG":                "config",
	}
	for in, want := range tests {
		if got := envTransform(in); got != want {
			t.Errorf("envTransform(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCatalogComma(t *testing.T) {
	s := DefaultSettings()
	if s.CatalogComma() != ',' {
		t.Error("default comma")
	}
	s.Catalog.Comma = ";"
	if s.CatalogComma() != ';' {
		t.Error("custom comma")
	}
}
