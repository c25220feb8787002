package go_lwjall

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// version can be set at link time with -X github.com/thog92/go-lwjall.version=...
var version string

func VersionNumberString() string {
	if version != "" {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}

	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 8 {
			return "dev-" + s.Value[:8]
		}
	}

	return "dev"
}

func VersionString() string {
	return fmt.Sprintf("go-lwjall %s", VersionNumberString())
}

func SystemInfoString() string {
	return fmt.Sprintf("%s; Go %s; %s/%s", VersionString(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
