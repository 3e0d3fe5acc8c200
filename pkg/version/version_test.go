package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	s := String()
	assert.Contains(t, s, "TaskMind")
	assert.Contains(t, s, Version)
	assert.Contains(t, s, GitCommit)
}

func TestInfo(t *testing.T) {
	info := Info()
	assert.Equal(t, Version, info["version"])
	assert.NotEmpty(t, info["goVersion"])
	assert.NotEmpty(t, info["platform"])
}
