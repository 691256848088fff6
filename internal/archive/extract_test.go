package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type zipEntry struct {
	name string
	body string
}

// writeZip создает архив с заданными записями; имена с "/" на конце становятся каталогами
func writeZip(t *testing.T, dir string, entries []zipEntry) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		if e.body != "" {
			_, err = w.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "roads.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestExtract_WritesEntries(t *testing.T) {
	src := t.TempDir()
	target := filepath.Join(t.TempDir(), "test", "shapefile")

	archivePath := writeZip(t, src, []zipEntry{
		{name: "roads/"},
		{name: "roads/roads.shp", body: "shp-bytes"},
		{name: "roads/roads.dbf", body: "dbf-bytes"},
		{name: "roads/nested/roads.prj", body: "PROJCS[...]"},
	})

	got, err := Extract(archivePath, target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	data, err := os.ReadFile(filepath.Join(target, "roads", "roads.shp"))
	require.NoError(t, err)
	assert.Equal(t, "shp-bytes", string(data))

	data, err = os.ReadFile(filepath.Join(target, "roads", "nested", "roads.prj"))
	require.NoError(t, err)
	assert.Equal(t, "PROJCS[...]", string(data))
}

func TestExtract_Idempotent(t *testing.T) {
	src := t.TempDir()
	target := t.TempDir()

	archivePath := writeZip(t, src, []zipEntry{
		{name: "parcels/parcels.shp", body: "first"},
	})

	// Файл с более длинным содержимым должен быть усечён при перезаписи
	require.NoError(t, os.MkdirAll(filepath.Join(target, "parcels"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "parcels", "parcels.shp"), []byte("stale content here"), 0o644))

	for i := 0; i < 2; i++ {
		_, err := Extract(archivePath, target)
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(target, "parcels", "parcels.shp"))
		require.NoError(t, err)
		assert.Equal(t, "first", string(data))
	}

	entries, err := os.ReadDir(filepath.Join(target, "parcels"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExtract_PathTraversal(t *testing.T) {
	src := t.TempDir()
	parent := t.TempDir()
	target := filepath.Join(parent, "target")

	archivePath := writeZip(t, src, []zipEntry{
		{name: "ok.txt", body: "ok"},
		{name: "../evil.txt", body: "evil"},
		{name: "after.txt", body: "after"},
	})

	_, err := Extract(archivePath, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPathTraversal)

	var traversal *PathTraversalError
	require.ErrorAs(t, err, &traversal)
	assert.Equal(t, "../evil.txt", traversal.Entry)

	_, statErr := os.Stat(filepath.Join(parent, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))

	// Распаковка останавливается на первой недопустимой записи
	_, statErr = os.Stat(filepath.Join(target, "after.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtract_NestedTraversal(t *testing.T) {
	archivePath := writeZip(t, t.TempDir(), []zipEntry{
		{name: "data/../../escape.shp", body: "x"},
	})

	_, err := Extract(archivePath, t.TempDir())
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestExtract_DotSegmentsInside(t *testing.T) {
	target := t.TempDir()
	archivePath := writeZip(t, t.TempDir(), []zipEntry{
		{name: "a/../b/lakes.shp", body: "lakes"},
	})

	_, err := Extract(archivePath, target)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(target, "b", "lakes.shp"))
	require.NoError(t, err)
	assert.Equal(t, "lakes", string(data))
}

func TestExtract_NotFound(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "Missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.zip") },
		},
		{
			name: "Directory instead of file",
			path: func(t *testing.T) string { return t.TempDir() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.path(t), t.TempDir())
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
