package filex

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestEnsureParentDir_CreatesNestedDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "berbagi-story.db")
	require.NoError(t, EnsureParentDir(path))

	fi, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	require.NoError(t, EnsureParentDir(path), "idempotent")
	require.NoError(t, EnsureParentDir("plain.db"))
}

func TestEnsureParentDir_FailsIfFileWithSameNameExists(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	require.Error(t, EnsureParentDir(filepath.Join(blocker, "store.db")))
}

func TestReadPhoto(t *testing.T) {
	dir := t.TempDir()

	img := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(img, pngHeader, 0o600))
	data, mime, err := ReadPhoto(img)
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)
	require.Equal(t, pngHeader, data)

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	_, _, err = ReadPhoto(txt)
	require.Error(t, err)

	big := filepath.Join(dir, "big.png")
	require.NoError(t, os.WriteFile(big, append(pngHeader, bytes.Repeat([]byte{0}, MaxPhotoSize)...), 0o600))
	_, _, err = ReadPhoto(big)
	require.ErrorIs(t, err, ErrPhotoTooLarge)

	_, _, err = ReadPhoto(filepath.Join(dir, "missing.png"))
	require.Error(t, err)
}
