// Package buildinfo reports how the running binary was built.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

// setting returns a build setting such as "-tags" or "vcs.revision".
func setting(key string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

func Tags() string {
	return setting("-tags")
}

// Summary is the one line printed by "asyncgit version", e.g.
// "asyncgit v1.2.0 (rev 0123abc, tags: netgo)".
func Summary() string {
	var extra []string
	if rev := setting("vcs.revision"); rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if setting("vcs.modified") == "true" {
			rev += "-dirty"
		}
		extra = append(extra, "rev "+rev)
	}
	if tags := Tags(); tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return "asyncgit " + Version()
	}
	return fmt.Sprintf("asyncgit %s (%s)", Version(), strings.Join(extra, ", "))
}
