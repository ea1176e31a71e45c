package utils

import (
	"runtime/debug"
)

const (
	unknownVersion       = "unknown"
	develVersion         = "(devel)"
	revisionSettingKey   = "vcs.revision"
	modifiedSettingKey   = "vcs.modified"
	shortRevisionLength  = 12
	dirtyRevisionSuffix  = "-dirty"
	modifiedSettingValue = "true"
)

// GetApplicationVersion reports the module version stamped by the Go
// toolchain. Development builds fall back to the VCS revision, then to
// "unknown".
func GetApplicationVersion() string {
	buildInfo, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersion
	}
	return versionFromBuildInfo(buildInfo)
}

func versionFromBuildInfo(buildInfo *debug.BuildInfo) string {
	if buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}
	var revision string
	var modified bool
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case revisionSettingKey:
			revision = setting.Value
		case modifiedSettingKey:
			modified = setting.Value == modifiedSettingValue
		}
	}
	if revision == "" {
		return unknownVersion
	}
	if len(revision) > shortRevisionLength {
		revision = revision[:shortRevisionLength]
	}
	if modified {
		revision += dirtyRevisionSuffix
	}
	return revision
}
