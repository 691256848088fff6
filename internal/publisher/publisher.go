// Package publisher публикует каталог shapefile в GeoServer: создает рабочее
// пространство и хранилище при необходимости, регистрирует каждый .shp как слой,
// пересчитывает bbox, назначает стиль и печатает ссылку предпросмотра.
package publisher

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/geo_publish.git/internal/archive"
	"github.com/InQaaaaGit/geo_publish.git/internal/geoserver"
	"github.com/InQaaaaGit/geo_publish.git/internal/models"
)

const (
	shapefilePattern = "*.shp"
	// autoStyle оставляет стиль, выбранный GeoServer
	autoStyle = "auto"
)

// GeoServer операции REST API, которые использует публикация
type GeoServer interface {
	WorkspaceExists(ctx context.Context, ws string) (bool, error)
	CreateWorkspace(ctx context.Context, ws string) (bool, error)
	DatastoreExists(ctx context.Context, ws, store string) (bool, error)
	CreateDirectoryDatastore(ctx context.Context, ws, store, folder, charset string) (bool, error)
	FeatureTypeExists(ctx context.Context, ws, store, layer string) (bool, error)
	LayerExists(ctx context.Context, ws, layer string) (bool, error)
	PublishFeatureType(ctx context.Context, ws, store, layer, title, srs string) (bool, error)
	SetDefaultStyle(ctx context.Context, ws, layer, style string) (bool, error)
	RecalcFeatureTypeBBox(ctx context.Context, ws, store, layer, which string) (bool, error)
	FeatureTypeBBox(ctx context.Context, ws, store, layer string) (models.BoundingBox, bool, error)
	PreviewURL(ws, layer string, bbox models.BoundingBox) string
	PreviewURLWithSRS(ctx context.Context, ws, store, layer string, bbox models.BoundingBox) string
}

// Options параметры публикации, не зависящие от конкретного запуска
type Options struct {
	// DataDir корень данных GeoServer; архивы распаковываются в DataDir/{workspace}/{datastore}
	DataDir string
	// Charset кодировка создаваемого хранилища
	Charset string
	// DetectSRS брать SRS предпросмотра из описания feature type
	DetectSRS bool
}

// Target единица работы одного запуска
type Target struct {
	Workspace string
	Datastore string
	InputPath string
	StyleName string
}

// Publisher проводит запуск публикации последовательно, шаг за шагом
type Publisher struct {
	gs     GeoServer
	opts   Options
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer
}

// New создает Publisher. Статусные строки пишутся в out, ошибки листинга в errOut.
func New(gs GeoServer, opts Options, logger *zap.Logger, out, errOut io.Writer) *Publisher {
	if opts.Charset == "" {
		opts.Charset = "GBK"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		gs:     gs,
		opts:   opts,
		logger: logger,
		out:    out,
		errOut: errOut,
	}
}

// Run выполняет шаги workspace, archive, datastore и публикацию каждого .shp.
// Ошибка возвращается только если запуск прерван до обработки слоёв;
// сбои отдельных слоёв учитываются в Report.
func (p *Publisher) Run(ctx context.Context, target Target) (*Report, error) {
	logger := p.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("workspace", target.Workspace),
		zap.String("datastore", target.Datastore),
	)
	logger.Info("Publish run started", zap.String("input", target.InputPath))

	if err := p.ensureWorkspace(ctx, target.Workspace); err != nil {
		return nil, err
	}

	folder, err := p.resolveFolder(target)
	if err != nil {
		return nil, err
	}
	report := &Report{Folder: folder}

	if err := p.ensureDatastore(ctx, target.Workspace, target.Datastore, folder); err != nil {
		return nil, err
	}

	shapefiles, err := listShapefiles(folder)
	if err != nil {
		p.errorf("Failed to list shapefiles: %v\n", err)
		logger.Error("Error listing shapefiles", zap.String("folder", folder), zap.Error(err))
	}

	for _, name := range shapefiles {
		layer := stripExt(name)
		report.Processed++

		result, err := p.publishOne(ctx, logger.With(zap.String("layer", layer)), target, layer)
		if err != nil {
			p.printf("Failed to publish layer '%s': %v\n", layer, err)
			logger.Error("Error publishing layer", zap.String("layer", layer), zap.Error(err))
			result = layerResult{outcome: OutcomeFailed}
		}
		report.add(layer, result)
	}

	p.printf("Done. Processed %d shapefile(s).\n", report.Processed)
	logger.Info("Publish run finished",
		zap.Int("processed", report.Processed),
		zap.Int("published", report.Published),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (p *Publisher) ensureWorkspace(ctx context.Context, ws string) error {
	exists, err := p.gs.WorkspaceExists(ctx, ws)
	if err != nil {
		return fmt.Errorf("error checking workspace %s: %w", ws, err)
	}
	if exists {
		p.printf("Workspace exists. Skipping.\n")
		return nil
	}

	ok, err := p.gs.CreateWorkspace(ctx, ws)
	if err != nil {
		return fmt.Errorf("error creating workspace %s: %w", ws, err)
	}
	if ok {
		p.printf("Workspace created.\n")
	} else {
		p.printf("Failed to create workspace.\n")
	}
	return nil
}

func (p *Publisher) ensureDatastore(ctx context.Context, ws, store, folder string) error {
	exists, err := p.gs.DatastoreExists(ctx, ws, store)
	if err != nil {
		return fmt.Errorf("error checking datastore %s: %w", store, err)
	}
	if exists {
		p.printf("Datastore exists. Skipping creation.\n")
		return nil
	}

	ok, err := p.gs.CreateDirectoryDatastore(ctx, ws, store, folder, p.opts.Charset)
	if err != nil {
		return fmt.Errorf("error creating datastore %s: %w", store, err)
	}
	if ok {
		p.printf("Datastore created.\n")
	} else {
		p.printf("Failed to create datastore.\n")
	}
	return nil
}

// resolveFolder возвращает абсолютный каталог с shapefile.
// Для .shp берется родительский каталог, .zip распаковывается в DataDir.
func (p *Publisher) resolveFolder(target Target) (string, error) {
	input := target.InputPath

	if info, err := os.Stat(input); err == nil && info.Mode().IsRegular() {
		switch strings.ToLower(filepath.Ext(input)) {
		case ".shp":
			input = filepath.Dir(input)
		case ".zip":
			root := filepath.Join(p.opts.DataDir, target.Workspace, target.Datastore)
			extracted, err := archive.Extract(input, root)
			if err != nil {
				return "", fmt.Errorf("error extracting %s: %w", input, err)
			}
			input = filepath.Join(extracted, stripExt(filepath.Base(input)))
		}
	}

	folder, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("error resolving %s: %w", input, err)
	}
	return folder, nil
}

// listShapefiles возвращает имена *.shp в каталоге без обхода подкаталогов
func listShapefiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(shapefilePattern, e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// stripExt отбрасывает расширение; имена вида ".shp" не меняются
func stripExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

func shouldApplyStyle(style string) bool {
	style = strings.TrimSpace(style)
	return style != "" && !strings.EqualFold(style, autoStyle)
}

func (p *Publisher) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Publisher) errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.errOut, format, args...)
}

var _ GeoServer = (*geoserver.Client)(nil)
