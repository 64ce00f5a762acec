package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	tests := []struct {
		name  string
		value string
	}{
		{"Version", info.Version},
		{"Commit", info.Commit},
		{"BuildTime", info.BuildTime},
		{"GoVersion", info.GoVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value == "" {
				t.Errorf("%s should not be empty", tt.name)
			}
		})
	}

	if GoVersion == "unknown" && info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want runtime fallback %q", info.GoVersion, runtime.Version())
	}
}

func TestFillFromVCS(t *testing.T) {
	info := Info{Commit: "unknown", BuildTime: "unknown"}
	fillFromVCS(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		{Key: "vcs.modified", Value: "true"},
	})

	if info.Commit != "0123456789ab" {
		t.Errorf("Commit = %q, want 12-char revision", info.Commit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
	if !info.Modified {
		t.Error("Modified = false, want true")
	}
}

func TestFillFromVCS_LdflagsWin(t *testing.T) {
	info := Info{Commit: "abc123", BuildTime: "yesterday"}
	fillFromVCS(&info, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "ffffffffffffffff"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	})

	if info.Commit != "abc123" || info.BuildTime != "yesterday" {
		t.Errorf("ldflags values overwritten: %+v", info)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Version+" (") || !strings.Contains(s, ") built at ") {
		t.Errorf("String() = %q, want \"<version> (<commit>) built at <time>\"", s)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent("litekv-cli"); got != "litekv-cli/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
