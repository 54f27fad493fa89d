package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/restaurant-seeder/constants"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
}

func TestScanner_Scan(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b", "2024-03.XLSX"))
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".cache", "hidden.csv"))
	touch(t, filepath.Join(root, "b", ".skip.hwp"))
	touch(t, filepath.Join(root, "c", "doc.hwpx"))
	touch(t, filepath.Join(root, "c", "~$doc.xlsx"))

	files, stats, err := NewScanner(nil).Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(root, "a.pdf"), files[0].Path)
	assert.Equal(t, constants.XLSX, files[1].Format)
	assert.Equal(t, constants.HWPX, files[2].Format)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(3), stats.Hidden)
}

func TestScanner_MissingRoot(t *testing.T) {
	_, _, err := NewScanner(nil).Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrBaseDirMissing)
}

func TestHashFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "a.csv")
	require.NoError(t, os.WriteFile(p, []byte("abc"), 0o600))
	h, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".git"))
	assert.True(t, IsHidden("~$2024-03.xlsx"))
	assert.False(t, IsHidden("a.pdf"))
	assert.False(t, IsHidden("2024~$.pdf"))
}
