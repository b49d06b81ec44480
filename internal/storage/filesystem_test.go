package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilesystemSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(t.TempDir(), "")
	require.NoError(t, err)

	require.NoError(t, fs.Save(ctx, "documents/a.txt", strings.NewReader("hello"), 5, "text/plain"))
	rc, err := fs.Open(ctx, "documents/a.txt")
	require.NoError(t, err)
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "hello", string(b))

	require.NoError(t, fs.Delete(ctx, "documents/a.txt"))
	_, err = fs.Open(ctx, "documents/a.txt")
	require.ErrorIs(t, err, ErrNotExist)
	// deleting twice is fine
	require.NoError(t, fs.Delete(ctx, "documents/a.txt"))
}

func TestFilesystemPathStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFilesystem(root, "")
	require.NoError(t, err)

	p, err := fs.Path("../../etc/passwd")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p, fs.root+string(filepath.Separator)))

	_, err = fs.Path("")
	require.Error(t, err)
}

func TestFilesystemURLRequiresBaseURL(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(t.TempDir(), "")
	require.NoError(t, err)
	_, err = fs.URL(ctx, "documents/a.pdf")
	require.ErrorIs(t, err, ErrNotSupported)

	fs, err = NewFilesystem(t.TempDir(), "http://media.example.com/files/")
	require.NoError(t, err)
	u, err := fs.URL(ctx, "documents/my file.pdf")
	require.NoError(t, err)
	require.Equal(t, "http://media.example.com/files/documents/my%20file.pdf", u)
}

func TestLocate(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFilesystem(t.TempDir(), "")
	require.NoError(t, err)
	loc := Locate(ctx, fs, "documents/a.pdf")
	require.Empty(t, loc.RemoteURL)
	require.Equal(t, filepath.Join(fs.root, "documents", "a.pdf"), loc.LocalPath)

	fs, err = NewFilesystem(t.TempDir(), "http://example.com")
	require.NoError(t, err)
	loc = Locate(ctx, fs, "documents/a.pdf")
	require.Equal(t, "http://example.com/documents/a.pdf", loc.RemoteURL)
	require.NotEmpty(t, loc.LocalPath)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), &Config{Backend: "tape"})
	require.Error(t, err)

	b, err := New(context.Background(), &Config{LocalRoot: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, BackendFilesystem, b.Name())
}
