package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportFile(t *testing.T) {
	store, _ := newTestStore(t)
	src := writePNG(t, t.TempDir(), "Golden Hour.PNG")

	img, err := store.ImportFile(src)
	require.NoError(t, err)

	assert.NotEmpty(t, img.ID)
	assert.Equal(t, "Golden Hour", img.DisplayName)
	assert.Equal(t, ".png", filepath.Ext(img.FileName))
	assert.NotEqual(t, "Golden Hour.PNG", img.FileName)

	path, err := store.ImagePath(img.ID)
	require.NoError(t, err)
	want, _ := os.ReadFile(src)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got, "import must be a byte copy")
	assert.FileExists(t, src, "source must be left in place")
}

func TestImportFile_Rejects(t *testing.T) {
	store, _ := newTestStore(t)
	dir := t.TempDir()

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0644))
	_, err := store.ImportFile(txt)
	assert.Error(t, err)

	fake := filepath.Join(dir, "fake.jpg")
	require.NoError(t, os.WriteFile(fake, []byte("not really a jpeg"), 0644))
	_, err = store.ImportFile(fake)
	assert.Error(t, err)

	assert.Equal(t, 0, store.ImageCount())
	entries, _ := os.ReadDir(store.FileManager().GetRootDir())
	assert.Empty(t, entries)
}

func TestImportFiles_PartialFailure(t *testing.T) {
	store, _ := newTestStore(t)
	dir := t.TempDir()

	srcs := []string{
		writePNG(t, dir, "one.png"),
		filepath.Join(dir, "missing.png"),
		writePNG(t, dir, "two.png"),
	}

	imported, err := store.ImportFiles(context.Background(), srcs)
	assert.Error(t, err)
	require.Len(t, imported, 2)
	assert.Equal(t, "one", imported[0].DisplayName)
	assert.Equal(t, "two", imported[1].DisplayName)
	assert.Equal(t, 2, store.ImageCount())
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("/a/b.JPG"))
	assert.True(t, IsSupported("x.webp"))
	assert.False(t, IsSupported("x.heic"))
	assert.False(t, IsSupported("x"))
}
