package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uuid unchanged", "4f9c2b1e-7d3a-4c55-9a1e-0b6f2d8c7e11", "4f9c2b1e-7d3a-4c55-9a1e-0b6f2d8c7e11"},
		{"empty", "", "unknown"},
		{"traversal", "../../etc/passwd", "etc_passwd"},
		{"spaces collapse", "my  session  #2", "my_session_2"},
		{"only dots", "...", "unknown"},
		{"unicode", "séance", "s_ance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_Length(t *testing.T) {
	t.Parallel()

	out := SanitizeFilename(strings.Repeat("a", 500))
	assert.Len(t, out, maxFilenameLen)
}

func TestValidatePathWithinDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		dir     string
		wantErr bool
	}{
		{"child", "/reports/abc/summary.txt", "/reports", false},
		{"dir itself", "/reports", "/reports", false},
		{"cleaned child", "/reports/x/../abc", "/reports", false},
		{"escape", "/reports/../etc/passwd", "/reports", true},
		{"sibling prefix", "/reports-old/a", "/reports", true},
		{"relative escape", "../outside", ".", true},
		{"relative child", "reports/abc", ".", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePathWithinDirectory(tt.path, tt.dir)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
