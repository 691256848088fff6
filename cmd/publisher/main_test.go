package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/geo_publish.git/internal/config"
	"github.com/InQaaaaGit/geo_publish.git/internal/geoserver/fake"
)

func TestMain(m *testing.M) {
	// Переменные окружения перекрывают флаги, поэтому очищаем их
	for _, name := range []string{
		"GEOSERVER_URL", "GEOSERVER_USER", "GEOSERVER_PASSWORD", "GEOSERVER_WORKSPACE",
		"GEOSERVER_DATASTORE", "INPUT_PATH", "STYLE_NAME", "GEOSERVER_DATA_DIR",
		"DATASTORE_CHARSET", "PREVIEW_DETECT_SRS", "STRICT_EXIT", "HTTP_TIMEOUT", "CONFIG",
	} {
		_ = os.Unsetenv(name)
	}
	os.Exit(m.Run())
}

func shapefileDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	return dir
}

func TestRun_Version(t *testing.T) {
	buildVersion, buildDate, buildCommit = "v1.0.0", "2024-05-01", ""
	t.Cleanup(func() { buildVersion, buildDate, buildCommit = "", "", "" })

	var stdout bytes.Buffer
	err := run(context.Background(), []string{"--version"}, &stdout, &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Build version: v1.0.0\nBuild date: 2024-05-01\nBuild commit: N/A\n", stdout.String())
}

func TestRun_Help(t *testing.T) {
	err := run(context.Background(), []string{"--help"}, &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

func TestRun_MissingValues(t *testing.T) {
	err := run(context.Background(), []string{"-w", "test"}, &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingValue)
	assert.Contains(t, err.Error(), "datastore, input")
}

func TestRun_Publish(t *testing.T) {
	srv := fake.NewServer()
	defer srv.Close()
	folder := shapefileDir(t, "roads.shp", "parcels.shp")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{
		"-u", srv.URL, "-w", "test", "-s", "shapefile", "-i", folder, "--style", "line",
	}, &stdout, &stderr, zap.NewNop())
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Style 'line' applied to 'roads'.\n")
	assert.Contains(t, stdout.String(), "Done. Processed 2 shapefile(s).\n")
	assert.Empty(t, stderr.String())

	style, ok := srv.LayerStyle("test", "parcels")
	require.True(t, ok)
	assert.Equal(t, "line", style)
}

func TestRun_StrictFailure(t *testing.T) {
	srv := fake.NewServer()
	defer srv.Close()
	srv.FailPublish("roads")
	folder := shapefileDir(t, "roads.shp")
	args := []string{"-u", srv.URL, "-w", "test", "-s", "shapefile", "-i", folder}

	err := run(context.Background(), args, &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)

	err = run(context.Background(), append(args, "--strict"), &bytes.Buffer{}, &bytes.Buffer{}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, errPublishFailed)
	assert.Contains(t, err.Error(), "1 of 1")
}
