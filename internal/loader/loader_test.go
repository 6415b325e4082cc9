package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contexta-ai/contexta/internal/core"
)

func TestDetectType(t *testing.T) {
	cases := []struct {
		path string
		want FileType
	}{
		{"doc.pdf", TypePDF},
		{"notes.txt", TypeTXT},
		{"notes.TEXT", TypeTXT},
		{"report.docx", TypeDOCX},
		{"/tmp/a/b/Upper.PDF", TypePDF},
	}
	for _, tc := range cases {
		got, err := DetectType(tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, got)
	}
}

func TestDetectType_UnsupportedExtension(t *testing.T) {
	for _, path := range []string{"img.png", "archive.zip", "noext"} {
		_, err := DetectType(path)
		require.Error(t, err, path)
		assert.ErrorIs(t, err, core.ErrInvalidInput)
	}
}

func TestTextLoader_UTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("héllo wörld"), 0o644))

	text, err := (&TextLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", text)
}

func TestTextLoader_NonUTF8Fallback(t *testing.T) {
	// 0xE9 is é in both Windows-1252 and Latin-1 but invalid UTF-8.
	path := filepath.Join(t.TempDir(), "legacy.txt")
	require.NoError(t, os.WriteFile(path, []byte{'c', 'a', 'f', 0xE9}, 0o644))

	text, err := (&TextLoader{}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestTextLoader_MissingFile(t *testing.T) {
	_, err := (&TextLoader{}).Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDocxLoader_NotImplemented(t *testing.T) {
	_, err := (&DocxLoader{}).Load(context.Background(), "anything.docx")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotImplemented)
}

type stubRunner struct {
	out []byte
	err error
}

func (s stubRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	return s.out, s.err
}

func TestPDFLoader_ExtractsViaRunner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	l := NewPDFLoader(stubRunner{out: []byte("page one text")})
	text, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "page one text", text)
}

func TestRegistry_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain contents"), 0o644))

	text, fileType, err := NewRegistry().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, TypeTXT, fileType)
	assert.Equal(t, "plain contents", text)
}

func TestRegistry_LoadUnsupported(t *testing.T) {
	_, _, err := NewRegistry().Load(context.Background(), "file.md")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
