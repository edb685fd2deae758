// Package misc keeps small helpers which do not belong anywhere else.
package misc

import (
	"runtime/debug"
	"sync"
)

const appName = "remap"

// GetAppName returns short program name used for logs, reports and temporary files.
func GetAppName() string {
	return appName
}

var buildInfo = sync.OnceValue(func() (res struct{ version, hash string }) {
	res.version = "unknown"
	res.hash = "unknown"

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if len(bi.Main.Version) != 0 && bi.Main.Version != "(devel)" {
		res.version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) != 0 {
			res.hash = s.Value
			if len(res.hash) > 12 {
				res.hash = res.hash[:12]
			}
			break
		}
	}
	return
})

// GetVersion returns module version as recorded by the build system.
func GetVersion() string {
	return buildInfo().version
}

// GetGitHash returns shortened VCS revision program was built from.
func GetGitHash() string {
	return buildInfo().hash
}
