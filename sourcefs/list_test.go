package sourcefs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSourceFiles(t *testing.T) {
	tests := []struct {
		name    string
		subdir  string
		pattern string
		want    []string
	}{
		{
			name: "everything",
			want: []string{"Content/readme.txt", "Scripts/init.py", "Source/Bridge.cpp", "Source/Bridge.h", "Source/Private/Util.cpp"},
		},
		{
			name:    "base name glob",
			pattern: "*.cpp",
			want:    []string{"Source/Bridge.cpp", "Source/Private/Util.cpp"},
		},
		{
			name:    "path glob stays in one directory",
			pattern: "Source/*.cpp",
			want:    []string{"Source/Bridge.cpp"},
		},
		{
			name:    "double star crosses directories",
			pattern: "Source/**.cpp",
			want:    []string{"Source/Bridge.cpp", "Source/Private/Util.cpp"},
		},
		{
			name:    "several globs",
			pattern: "*.h, *.py",
			want:    []string{"Scripts/init.py", "Source/Bridge.h"},
		},
		{
			name:    "subdirectory relative to root",
			subdir:  "Source/Private",
			pattern: "",
			want:    []string{"Source/Private/Util.cpp"},
		},
		{
			name:    "no match",
			pattern: "*.uasset",
			want:    []string{},
		},
	}
	f, _ := newTestFS(t, Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ListSourceFiles(context.Background(), tt.subdir, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListSourceFiles_Errors(t *testing.T) {
	f, _ := newTestFS(t, Config{})
	ctx := context.Background()

	_, err := f.ListSourceFiles(ctx, "../", "")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = f.ListSourceFiles(ctx, "Missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.ListSourceFiles(ctx, "Source/Bridge.h", "")
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = f.ListSourceFiles(ctx, "", "[")
	assert.ErrorIs(t, err, ErrInvalidPattern)
}

func TestListSourceFiles_Cancelled(t *testing.T) {
	f, _ := newTestFS(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ListSourceFiles(ctx, "", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileMatcher(t *testing.T) {
	m, err := compileMatcher(" *.cpp , ,*.h ")
	require.NoError(t, err)
	assert.Len(t, m.globs, 2)
	assert.True(t, m.match("a/b/c.h"))
	assert.False(t, m.match("a/b/c.txt"))

	all, err := compileMatcher("")
	require.NoError(t, err)
	assert.True(t, all.match("anything"))
}
