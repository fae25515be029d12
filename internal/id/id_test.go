package id

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	got, err := Generate("community")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "community-"))
	assert.Len(t, got, len("community-")+21)
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		got := MustGenerate("event")
		require.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}

func TestFilename(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-Za-z]{7}\.png$`)

	for range 100 {
		got, err := Filename("png")
		require.NoError(t, err)
		assert.Regexp(t, pattern, got)
	}
}

func TestShort_Length(t *testing.T) {
	got, err := Short(12)
	require.NoError(t, err)
	assert.Len(t, got, 12)
	assert.NotContains(t, got, "-")
	assert.NotContains(t, got, "_")
}
