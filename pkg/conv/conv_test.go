package conv

import "testing"

func TestToInt64(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{7, 7, true},
		{int64(8), 8, true},
		{9.0, 9, true},
		{"10", 10, true},
		{"x", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ToInt64(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ToInt64(%#v) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSliceAnyToInt64(t *testing.T) {
	got := SliceAnyToInt64([]any{1, 2.0, "3", "bad", nil})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("SliceAnyToInt64() = %v", got)
	}
	if SliceAnyToInt64("nope") != nil {
		t.Error("non-slice input should return nil")
	}
}

func TestConfigGet(t *testing.T) {
	cfg := map[string]any{"name": "hot", "n": 10, "min": 4, "ratio": 0.5, "flag": true}

	if got := ConfigGet(cfg, "name", ""); got != "hot" {
		t.Errorf("ConfigGet(name) = %q", got)
	}
	if got := ConfigGet(cfg, "n", "x"); got != "x" {
		t.Errorf("type mismatch should return default, got %q", got)
	}
	if got := ConfigGet(cfg, "flag", false); !got {
		t.Error("ConfigGet(flag) = false")
	}
	if got := ConfigGetInt64(cfg, "n", 0); got != 10 {
		t.Errorf("ConfigGetInt64(n) = %d", got)
	}
	if got := ConfigGetInt64(cfg, "missing", 3); got != 3 {
		t.Errorf("ConfigGetInt64(missing) = %d", got)
	}
	if got, ok := ConfigGetFloat64(cfg, "min", 0); !ok || got != 4 {
		t.Errorf("ConfigGetFloat64(min) = %v, %v", got, ok)
	}
	if _, ok := ConfigGetFloat64(cfg, "name", 0); ok {
		t.Error("ConfigGetFloat64(name) should fail")
	}
}
