package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinFolderPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{"empty", nil, "/"},
		{"single", []string{"a"}, "/a/"},
		{"two", []string{"a", "b"}, "/a/b/"},
		{"three", []string{"lib", "pkg", "sub"}, "/lib/pkg/sub/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, JoinFolderPath(tt.segments))
		})
	}
}

func TestJoinLeafPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/a", JoinLeafPath([]string{"a"}))
	assert.Equal(t, "/a/b/c", JoinLeafPath([]string{"a", "b", "c"}))
}

func TestParentFolderPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"deep", "/foo/bar/com/", "/foo/bar/"},
		{"two_levels", "/foo/bar/", "/foo/"},
		{"top_level", "/foo/", "/"},
		{"root", "/", "/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParentFolderPath(tt.input))
		})
	}
}

func TestLastFolderName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "com", LastFolderName("/foo/bar/com/"))
	assert.Equal(t, "foo", LastFolderName("/foo/"))
	assert.Equal(t, "", LastFolderName("/"))
}

func TestSplitSegments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"root", "/", nil},
		{"leaf", "/a/b", []string{"a", "b"}},
		{"folder", "/a/b/", []string{"a", "b"}},
		{"no_leading_slash", "a/b", []string{"a", "b"}},
		{"double_slash", "/a//b/", []string{"a", "b"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitSegments(tt.input))
		})
	}
}

func TestValidSegments(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidSegments([]string{"a", "b", "index.js"}))
	assert.False(t, ValidSegments(nil))
	assert.False(t, ValidSegments([]string{""}))
	assert.False(t, ValidSegments([]string{"a", ".."}))
	assert.False(t, ValidSegments([]string{"a/b"}))
}
