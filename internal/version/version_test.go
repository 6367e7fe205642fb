package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldV, oldSHA, oldBuilt := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = oldV, oldSHA, oldBuilt })

	Version, GitSHA, BuildTime = "1.2.0", "0123456789abcdef", "2026-10-01T00:00:00Z"
	assert.Equal(t, "handvox 1.2.0 (0123456, built 2026-10-01T00:00:00Z)", String())

	GitSHA = "abc"
	assert.Equal(t, "handvox 1.2.0 (abc, built 2026-10-01T00:00:00Z)", String())
}
