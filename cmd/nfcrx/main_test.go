package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_InvalidFlagValues(t *testing.T) {
	assert.Equal(t, 1, run([]string{"-t", "abc"}))
	assert.Equal(t, 1, run([]string{"-t"}))
	assert.Equal(t, 1, run([]string{"-p"}))
	assert.Equal(t, 1, run([]string{"-c"}))
	assert.Equal(t, 1, run([]string{"--bogus"}))
}

func TestRun_MissingProfileFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.yaml")
	assert.Equal(t, 1, run([]string{"-c", missing}))
}

func TestRun_Help(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-h"}))
}
