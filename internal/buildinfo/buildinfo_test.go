package buildinfo

import (
	"runtime/debug"
	"testing"
)

func TestSummary(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })

	tests := []struct {
		name string
		info *debug.BuildInfo
		want string
	}{
		{"no_info", nil, "asyncgit dev"},
		{"devel", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, "asyncgit dev"},
		{
			"release",
			&debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.0"},
				Settings: []debug.BuildSetting{
					{Key: "-tags", Value: "netgo"},
					{Key: "vcs.revision", Value: "0123abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			"asyncgit v1.2.0 (rev 0123abc-dirty, tags: netgo)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readBuildInfo = func() (*debug.BuildInfo, bool) { return tt.info, tt.info != nil }
			if got := Summary(); got != tt.want {
				t.Fatalf("Summary() = %q, want %q", got, tt.want)
			}
		})
	}
}
