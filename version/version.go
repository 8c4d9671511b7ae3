// Package version reports the runtime's build identity for log output.
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/scenetalk/runtime/version.version=1.2.0"
//
// Source builds fall back to the module build info embedded by the Go
// toolchain.
package version

import (
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
)

// Stamped at build time; zero values mean a source build.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

const shortCommitLen = 7

type buildIdentity struct {
	version string
	commit  string
	dirty   bool
	date    string
}

// resolve merges the stamped variables with the binary's embedded build
// info. Stamped values win; VCS dirty state is only meaningful when the
// commit came from build info rather than ldflags.
func resolve() buildIdentity {
	id := buildIdentity{version: version, commit: gitCommit, date: buildDate}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return id
	}

	if id.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		id.version = info.Main.Version
	}
	if gitCommit == "" {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" {
					id.commit = s.Value[:min(shortCommitLen, len(s.Value))]
				}
			case "vcs.modified":
				id.dirty = s.Value == "true"
			}
		}
	}
	return id
}

// GetVersion returns the runtime's version string.
func GetVersion() string {
	return resolve().version
}

// GetBuildInfo returns the build identity as slog attributes, suitable
// for attaching to a startup log line.
func GetBuildInfo() []any {
	id := resolve()

	attrs := []any{"version", id.version}
	if id.commit != "" {
		attrs = append(attrs, "commit", id.commit)
	}
	if id.dirty {
		attrs = append(attrs, "dirty", true)
	}
	if id.date != "" {
		attrs = append(attrs, "built", id.date)
	}
	return attrs
}

// LogStartup emits a single line with the build identity. It fires only
// when LOG_LEVEL asks for debug output; as a library the runtime stays
// quiet otherwise.
func LogStartup() {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug", "trace":
	default:
		return
	}
	slog.Debug("scenetalk runtime starting", GetBuildInfo()...)
}
