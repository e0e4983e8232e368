package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestComplete(t *testing.T) {
	stamped := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.9.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		info Info
		bi   *debug.BuildInfo
		want Info
	}{
		{
			name: "unset fields filled",
			info: Info{Version: "dev", Commit: "none", Date: "unknown"},
			bi:   stamped,
			want: Info{Version: "v0.9.0", Commit: "abc123", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name: "ldflags win",
			info: Info{Version: "v1.2.3", Commit: "deadbeef", Date: "2026-05-01"},
			bi:   stamped,
			want: Info{Version: "v1.2.3", Commit: "deadbeef", Date: "2026-05-01"},
		},
		{
			name: "devel module keeps dev",
			info: Info{Version: "dev", Commit: "none", Date: "unknown"},
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.info.complete(tt.bi)); diff != "" {
				t.Errorf("complete() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTemplate(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	if got := Template(); !strings.HasPrefix(got, "{{.Name}} version v1.2.3\n") {
		t.Errorf("Template() = %q, want the stamped version first", got)
	}
	if got := Get().String(); !strings.Contains(got, "version: v1.2.3") {
		t.Errorf("Info.String() = %q, want it to name v1.2.3", got)
	}
}
