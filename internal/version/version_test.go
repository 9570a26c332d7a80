package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	tests := []struct {
		name     string
		version  string
		commit   string
		date     string
		contains []string
	}{
		{
			name:     "release build",
			version:  "1.2.3",
			commit:   "0123456789abcdef",
			date:     "2026-01-02T03:04:05Z",
			contains: []string{"colorvibe version 1.2.3", "commit: 01234567", "built: 2026-01-02T03:04:05Z"},
		},
		{
			name:     "short commit",
			version:  "1.0.0",
			commit:   "abc",
			date:     "2026-01-02T03:04:05Z",
			contains: []string{"commit: abc,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, Date = tt.version, tt.commit, tt.date
			got := String()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("String() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "9.9.9"
	if got := UserAgent(); got != "colorvibe/9.9.9" {
		t.Errorf("UserAgent() = %q", got)
	}
}
