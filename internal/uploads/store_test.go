package uploads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiskStore_ExistingDirsReused(t *testing.T) {
	root := t.TempDir()

	store, err := NewDiskStore(root)
	require.NoError(t, err)

	// a second store over the same root finds the kind dirs already there
	store, err = NewDiskStore(root)
	require.NoError(t, err)

	for kindName := range kinds {
		stat, err := os.Stat(filepath.Join(store.RootPath(), kindName))
		require.NoError(t, err)
		assert.True(t, stat.IsDir())
	}
}

func TestDiskStore_SaveAndDelete(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	images, ok := KindByName("images")
	require.True(t, ok)

	content := "not really a png but good enough"
	uploaded, err := store.Save(
		t.Context(), images,
		"avatar.png", "image/png", int64(len(content)),
		strings.NewReader(content),
	)
	require.NoError(t, err)

	assert.Equal(t, "avatar.png", uploaded.OriginalName)
	assert.Equal(t, "image/png", uploaded.MimeType)
	assert.Equal(t, int64(len(content)), uploaded.Size)
	assert.True(t, strings.HasPrefix(uploaded.Filename, "avatar-"))
	assert.True(t, strings.HasSuffix(uploaded.Filename, ".png"))
	assert.Equal(t, "/uploads/images/"+uploaded.Filename, uploaded.URL)

	stored, err := os.ReadFile(filepath.Join(store.RootPath(), "images", uploaded.Filename))
	require.NoError(t, err)
	assert.Equal(t, content, string(stored))

	require.NoError(t, store.Delete(t.Context(), uploaded.Filename))
	assert.ErrorIs(t, store.Delete(t.Context(), uploaded.Filename), ErrFileNotFound)
}

func TestDiskStore_Save_RejectsWrongType(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	images, _ := KindByName("images")
	_, err = store.Save(
		t.Context(), images,
		"evil.exe", "application/octet-stream", 4,
		strings.NewReader("mwah"),
	)
	var typeErr *TypeNotAllowedError
	require.ErrorAs(t, err, &typeErr)
	assert.Contains(t, typeErr.Error(), "application/octet-stream")
}

func TestDiskStore_Save_RejectsOversized(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	images, _ := KindByName("images")
	_, err = store.Save(
		t.Context(), images,
		"huge.png", "image/png", images.MaxSize+1,
		strings.NewReader("tiny body, lying header"),
	)
	var sizeErr *FileTooLargeError
	require.ErrorAs(t, err, &sizeErr)

	// nothing should have been left on disk
	entries, err := os.ReadDir(filepath.Join(store.RootPath(), "images"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDiskStore_Delete_RejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	for _, filename := range []string{
		"../outside.txt",
		"images/../../etc/passwd",
		"",
	} {
		assert.ErrorIs(t, store.Delete(t.Context(), filename), ErrInvalidFilename, filename)
	}
}
