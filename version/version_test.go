package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildVars(t *testing.T, version, commit, branch, buildTime string) {
	t.Helper()
	orig := [4]string{Version, GitCommit, GitBranch, BuildTime}
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = orig[0], orig[1], orig[2], orig[3]
	})
	Version, GitCommit, GitBranch, BuildTime = version, commit, branch, buildTime
}

func TestGet_InjectedValuesWin(t *testing.T) {
	withBuildVars(t, "1.4.0", "abcdef0123456789", "release", "2026-01-15T10:30:00Z")

	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("expected injected version, got %q", info.Version)
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("expected commit shortened to 7, got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("expected injected build time, got %q", info.BuildTime)
	}
	if info.GoVersion == "" || info.Platform == "" {
		t.Errorf("expected runtime fields, got go=%q platform=%q", info.GoVersion, info.Platform)
	}
}

func TestInfoFill(t *testing.T) {
	tests := []struct {
		name       string
		start      Info
		bi         debug.BuildInfo
		wantVer    string
		wantCommit string
		wantDirty  bool
	}{
		{
			name:       "module version replaces dev",
			start:      Info{Version: "dev"},
			bi:         debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}},
			wantVer:    "0.3.1",
			wantCommit: "",
		},
		{
			name:    "devel module keeps dev",
			start:   Info{Version: "dev"},
			bi:      debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantVer: "dev",
		},
		{
			name:  "vcs stamp",
			start: Info{Version: "dev"},
			bi: debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "feedface"},
				{Key: "vcs.modified", Value: "true"},
			}},
			wantVer:    "dev",
			wantCommit: "feedface",
			wantDirty:  true,
		},
		{
			name:  "injected commit wins",
			start: Info{Version: "2.0.0", GitCommit: "1234567"},
			bi: debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "feedface"},
			}},
			wantVer:    "2.0.0",
			wantCommit: "1234567",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.start
			info.fill(&tt.bi)
			if info.Version != tt.wantVer {
				t.Errorf("version = %q, want %q", info.Version, tt.wantVer)
			}
			if info.GitCommit != tt.wantCommit {
				t.Errorf("commit = %q, want %q", info.GitCommit, tt.wantCommit)
			}
			if info.Dirty != tt.wantDirty {
				t.Errorf("dirty = %v, want %v", info.Dirty, tt.wantDirty)
			}
		})
	}
}

func TestInfoStrings(t *testing.T) {
	tests := []struct {
		name      string
		info      Info
		wantShort string
		wantLong  string
		release   bool
	}{
		{
			name:      "dev",
			info:      Info{Version: "dev"},
			wantShort: "dev",
			wantLong:  "dev",
		},
		{
			name:      "release on main",
			info:      Info{Version: "1.0.0", GitCommit: "abc1234", GitBranch: "main", BuildTime: "2026-01-15T10:30:00Z"},
			wantShort: "1.0.0-abc1234",
			wantLong:  "1.0.0-abc1234 built 2026-01-15T10:30:00Z",
			release:   true,
		},
		{
			name:      "dirty feature branch",
			info:      Info{Version: "1.0.0", GitCommit: "abc1234", GitBranch: "feature/x", Dirty: true},
			wantShort: "1.0.0-abc1234-dirty",
			wantLong:  "1.0.0-abc1234-dirty (feature/x)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.wantShort {
				t.Errorf("Short() = %q, want %q", got, tt.wantShort)
			}
			if got := tt.info.Long(); got != tt.wantLong {
				t.Errorf("Long() = %q, want %q", got, tt.wantLong)
			}
			if got := tt.info.IsRelease(); got != tt.release {
				t.Errorf("IsRelease() = %v, want %v", got, tt.release)
			}
		})
	}
}

func TestReport(t *testing.T) {
	info := Info{Version: "1.2.0", GitCommit: "abc1234", GoVersion: "go1.26.0", Platform: "linux/amd64"}

	r := info.Report("shellwrap")
	if !strings.HasPrefix(r, "shellwrap 1.2.0\n") {
		t.Errorf("unexpected header in %q", r)
	}
	for _, want := range []string{"commit:", "abc1234", "platform:", "go1.26.0"} {
		if !strings.Contains(r, want) {
			t.Errorf("expected report to contain %q, got %q", want, r)
		}
	}
	for _, absent := range []string{"branch:", "built:", "tree:"} {
		if strings.Contains(r, absent) {
			t.Errorf("empty %s row should be omitted, got %q", absent, r)
		}
	}
}

func TestInfoFields(t *testing.T) {
	f := (&Info{Version: "1.2.0", Platform: "linux/arm64"}).Fields()
	if f["version"] != "1.2.0" {
		t.Errorf("expected version field, got %v", f["version"])
	}
	if f["platform"] != "linux/arm64" {
		t.Errorf("expected platform field, got %v", f["platform"])
	}
}
