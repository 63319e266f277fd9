package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinesEqualInputs(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Lines([]byte("a\nb\n"), []byte("a\nb\n"), "  "))
	assert.Empty(t, Lines(nil, []byte{}, ""))
}

func TestLinesReplacement(t *testing.T) {
	t.Parallel()

	got := Lines([]byte("one\ntwo\nthree\n"), []byte("one\n2\nthree\n"), "")
	want := "  one\n" +
		"- two\n" +
		"+ 2\n" +
		"  three\n"
	assert.Equal(t, want, got)
}

func TestLinesInsertDeleteWithIndent(t *testing.T) {
	t.Parallel()

	got := Lines([]byte("a\nb\n"), []byte("a\nb\nc\n"), "    ")
	assert.Equal(t, "      a\n      b\n    + c\n", got)

	got = Lines([]byte("a\nb\n"), []byte("b\n"), "")
	assert.Equal(t, "- a\n  b\n", got)
}

func TestLinesMissingTrailingNewline(t *testing.T) {
	t.Parallel()

	got := Lines([]byte("hello\n"), []byte("hello"), "")
	assert.Equal(t, "- hello\n+ hello\n\\ No newline at end of file\n", got)

	got = Lines([]byte("a\nb"), []byte("a\nc\n"), "  ")
	assert.Equal(t, "    a\n  - b\n  \\ No newline at end of file\n  + c\n", got)
}

func TestFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ref := filepath.Join(dir, "out.ref")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(ref, []byte("x\n"), 0o644))
	require.NoError(t, os.WriteFile(out, []byte("x\n"), 0o644))

	same, d, err := Files(ref, out, "")
	require.NoError(t, err)
	assert.True(t, same)
	assert.Empty(t, d)

	require.NoError(t, os.WriteFile(out, []byte("y\n"), 0o644))
	same, d, err = Files(ref, out, "")
	require.NoError(t, err)
	assert.False(t, same)
	assert.Equal(t, "- x\n+ y\n", d)

	_, _, err = Files(filepath.Join(dir, "missing"), out, "")
	assert.Error(t, err)
}
