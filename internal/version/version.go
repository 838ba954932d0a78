// Package version reports the application name and build version.
package version

import "runtime/debug"

const AppName = "slashbot"

// Version is set at build time with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = ""

// String returns Version, falling back to the module version and VCS
// revision recorded by the Go toolchain.
func String() string {
	if Version != "" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	v := info.Main.Version
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			if v == "" || v == "(devel)" {
				return s.Value[:7]
			}
			return v + "+" + s.Value[:7]
		}
	}
	if v == "" {
		return "dev"
	}
	return v
}
