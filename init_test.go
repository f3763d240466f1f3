package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySection(t *testing.T) {
	t.Parallel()

	section := sentinelStart + "\nnew content\n" + sentinelEnd
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{
			name:     "empty file",
			existing: "",
			want:     "\n" + section + "\n",
		},
		{
			name:     "append with separator",
			existing: "# Project\n\nNotes.\n",
			want:     "# Project\n\nNotes.\n\n" + section + "\n",
		},
		{
			name:     "append adds missing newline",
			existing: "# Project",
			want:     "# Project\n\n" + section + "\n",
		},
		{
			name:     "replace existing block",
			existing: "# Project\n\n" + sentinelStart + "\nold content\n" + sentinelEnd + "\n\n## Other\n",
			want:     "# Project\n\n" + section + "\n\n## Other\n",
		},
		{
			name:     "end before start appends",
			existing: sentinelEnd + "\n" + sentinelStart + "\n",
			want:     sentinelEnd + "\n" + sentinelStart + "\n\n" + section + "\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, applySection(tc.existing, section))
		})
	}
}

func TestInitWritesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "CLAUDE.md")

	_, stderr, err := runCLI(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "wrote codeinventory section to "+path)

	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(first), "\n"+sentinelStart), string(first))
	assert.True(t, strings.HasSuffix(string(first), sentinelEnd+"\n"), string(first))

	// A second run rewrites the block in place.
	_, _, err = runCLI(t, "init", path)
	require.NoError(t, err)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestInitDryRun(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	missing := filepath.Join(dir, "new.md")
	out, _, err := runCLI(t, "init", "--dry-run", missing)
	require.NoError(t, err)
	assert.NoFileExists(t, missing)
	assert.Contains(t, out, sentinelStart)
	assert.Contains(t, out, sentinelEnd)

	existing := filepath.Join(dir, "CLAUDE.md")
	content := "# My Project\n\nSome existing content.\n"
	writeTestFile(t, dir, "CLAUDE.md", content)
	out, _, err = runCLI(t, "init", existing, "--dry-run")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, content), out)
	assert.Contains(t, out, sentinelStart)
	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	// Without a path only the section itself is printed.
	out, _, err = runCLI(t, "init", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, generateSection()+"\n", out)
}

func TestInitUnwritable(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing-dir", "CLAUDE.md")

	var sink strings.Builder
	err := run(context.Background(), []string{"init", path}, &sink, &sink)
	assert.ErrorContains(t, err, "writing "+path)
}

func TestInitSection(t *testing.T) {
	t.Parallel()
	section := generateSection()

	for _, want := range []string{
		"--help",
		"--version",
		"codeinventory ask",
		"codeinventory list",
		"--offset",
		"codeinventory endpoints",
		".codeinventory.toml",
	} {
		assert.Contains(t, section, want)
	}
	assert.NotContains(t, section, "in:", "ask scopes are written as plain words")
}
