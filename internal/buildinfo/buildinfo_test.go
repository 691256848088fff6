package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultInfo проверяет создание информации о сборке по умолчанию
func TestDefaultInfo(t *testing.T) {
	info := DefaultInfo()

	assert.Equal(t, "N/A", info.Version)
	assert.Equal(t, "N/A", info.Date)
	assert.Equal(t, "N/A", info.Commit)
}

// TestNewInfo проверяет, что пустые значения заменяются на N/A
func TestNewInfo(t *testing.T) {
	info := NewInfo("v1.2.0", "", "abc123")

	assert.Equal(t, "v1.2.0", info.Version)
	assert.Equal(t, "N/A", info.Date)
	assert.Equal(t, "abc123", info.Commit)
}

// TestFprint проверяет вывод для --version
func TestFprint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewInfo("v1.2.0", "2025-03-01", "abc123").Fprint(&buf))

	assert.Equal(t, "Build version: v1.2.0\nBuild date: 2025-03-01\nBuild commit: abc123\n", buf.String())
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, "geo_publish/v1.2.0", NewInfo("v1.2.0", "", "").UserAgent("geo_publish"))
	assert.Equal(t, "geo_publish/N/A", DefaultInfo().UserAgent("geo_publish"))
}

func TestFields(t *testing.T) {
	fields := NewInfo("v1.2.0", "2025-03-01", "abc123").Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, "version", fields[0].Key)
	assert.Equal(t, "v1.2.0", fields[0].String)
}
