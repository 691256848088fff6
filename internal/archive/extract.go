// Package archive распаковывает zip архивы с shapefile в каталог данных GeoServer.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Extract распаковывает archivePath в targetDir и возвращает targetDir.
// Каждая запись проверяется отдельно: если после нормализации путь выходит
// за пределы targetDir, распаковка прекращается с *PathTraversalError.
// Существующие файлы перезаписываются.
func Extract(archivePath, targetDir string) (string, error) {
	info, err := os.Stat(archivePath)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, archivePath)
	}

	if err := os.MkdirAll(targetDir, dirPerm); err != nil {
		return "", fmt.Errorf("error creating target dir: %w", err)
	}

	root, err := filepath.Abs(targetDir)
	if err != nil {
		return "", fmt.Errorf("error resolving target dir: %w", err)
	}

	// При небезопасных именах записей reader возвращается вместе с ошибкой,
	// такие записи отсекает проверка resolveEntry.
	reader, err := zip.OpenReader(archivePath)
	if reader == nil {
		return "", fmt.Errorf("error opening archive: %w", err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		out, err := resolveEntry(root, entry.Name)
		if err != nil {
			return "", err
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(out, dirPerm); err != nil {
				return "", fmt.Errorf("error creating dir %s: %w", out, err)
			}
			continue
		}

		if err := extractFile(entry, out); err != nil {
			return "", err
		}
	}

	return targetDir, nil
}

// resolveEntry возвращает абсолютный путь записи внутри root
func resolveEntry(root, name string) (string, error) {
	out := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", &PathTraversalError{Entry: name}
	}
	return out, nil
}

func extractFile(entry *zip.File, out string) error {
	if err := os.MkdirAll(filepath.Dir(out), dirPerm); err != nil {
		return fmt.Errorf("error creating dir for %s: %w", entry.Name, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("error opening entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("error creating file %s: %w", out, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("error writing file %s: %w", out, err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("error closing file %s: %w", out, err)
	}
	return nil
}
