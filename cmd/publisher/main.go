// Command publisher публикует каталог shapefile, отдельный .shp или .zip архив
// в GeoServer через REST API.
//
// Пример:
//
//	publisher -u http://localhost:8080/geoserver -w test -s shapefile -i ./data/roads.zip
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/InQaaaaGit/geo_publish.git/internal/app"
	"github.com/InQaaaaGit/geo_publish.git/internal/buildinfo"
	"github.com/InQaaaaGit/geo_publish.git/internal/config"
)

// Заполняются при сборке:
// go build -ldflags "-X main.buildVersion=v1.0.0 -X main.buildDate=... -X main.buildCommit=..."
var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

var errPublishFailed = errors.New("some shapefiles failed to publish")

func main() {
	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer func() {
		// Sync на stderr терминала возвращает EINVAL, это не ошибка
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = run(ctx, os.Args[1:], os.Stdout, os.Stderr, logger)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		logger.Fatal("Publish failed", zap.Error(err))
	}
}

// run разбирает аргументы и выполняет одну публикацию
func run(ctx context.Context, args []string, stdout, stderr io.Writer, logger *zap.Logger) error {
	cfg, err := config.Parse(args)
	if err != nil {
		return err
	}

	info := buildinfo.NewInfo(buildVersion, buildDate, buildCommit)
	if cfg.ShowVersion {
		return info.Fprint(stdout)
	}

	application, err := app.NewApp(cfg, logger, info, stdout, stderr)
	if err != nil {
		return err
	}

	report, err := application.Run(ctx)
	if err != nil {
		return err
	}
	if application.Failed(report) {
		return fmt.Errorf("%w: %d of %d", errPublishFailed, report.Failed, report.Processed)
	}
	return nil
}
