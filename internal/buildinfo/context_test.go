package buildinfo

import (
	"testing"
)

func TestContext_Version(t *testing.T) {
	tests := []struct {
		name string
		ctx  *Context
		want string
	}{
		{
			name: "nil context",
			ctx:  nil,
			want: UnknownValue,
		},
		{
			name: "empty version",
			ctx:  NewContext("", "2026-01-01"),
			want: UnknownValue,
		},
		{
			name: "valid version",
			ctx:  NewContext("1.0.0", "2026-01-01"),
			want: "1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ctx.GetVersion(); got != tt.want {
				t.Errorf("GetVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContext_BuildDate(t *testing.T) {
	var nilCtx *Context
	if got := nilCtx.GetBuildDate(); got != UnknownValue {
		t.Errorf("GetBuildDate() on nil = %v, want %v", got, UnknownValue)
	}
	if got := NewContext("1.0.0", "2026-01-01").GetBuildDate(); got != "2026-01-01" {
		t.Errorf("GetBuildDate() = %v, want 2026-01-01", got)
	}
}

func TestContext_Release(t *testing.T) {
	if got := NewContext("", "").Release(); got != "quorum@unknown" {
		t.Errorf("Release() = %v, want quorum@unknown", got)
	}
	if got := NewContext("0.4.1", "").Release(); got != "quorum@0.4.1" {
		t.Errorf("Release() = %v, want quorum@0.4.1", got)
	}
}
