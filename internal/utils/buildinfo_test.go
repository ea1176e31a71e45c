package utils

import (
	"runtime/debug"
	"testing"
)

func TestVersionFromBuildInfo(t *testing.T) {
	testCases := []struct {
		name     string
		info     debug.BuildInfo
		expected string
	}{
		{
			name:     "module version",
			info:     debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}},
			expected: "v1.2.3",
		},
		{
			name: "clean revision",
			info: debug.BuildInfo{
				Main:     debug.Module{Version: develVersion},
				Settings: []debug.BuildSetting{{Key: revisionSettingKey, Value: "0123456789abcdef"}},
			},
			expected: "0123456789ab",
		},
		{
			name: "modified revision",
			info: debug.BuildInfo{
				Settings: []debug.BuildSetting{
					{Key: revisionSettingKey, Value: "abc123"},
					{Key: modifiedSettingKey, Value: "true"},
				},
			},
			expected: "abc123-dirty",
		},
		{
			name:     "no information",
			info:     debug.BuildInfo{Main: debug.Module{Version: develVersion}},
			expected: unknownVersion,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if version := versionFromBuildInfo(&testCase.info); version != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, version)
			}
		})
	}
}
