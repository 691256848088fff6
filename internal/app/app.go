// Package app связывает конфигурацию, клиент GeoServer и публикацию в одно приложение.
// Предоставляет точку входа для запуска публикации из cmd/publisher.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/InQaaaaGit/geo_publish.git/internal/buildinfo"
	"github.com/InQaaaaGit/geo_publish.git/internal/config"
	"github.com/InQaaaaGit/geo_publish.git/internal/geoserver"
	"github.com/InQaaaaGit/geo_publish.git/internal/publisher"
)

// Name имя приложения в User-Agent
const Name = "geo_publish"

// App представляет приложение публикации shapefile.
// Инкапсулирует конфигурацию, логгер, клиент GeoServer и публикацию.
type App struct {
	config    *config.Config       // Конфигурация запуска
	logger    *zap.Logger          // Логгер для записи событий приложения
	client    *geoserver.Client    // Клиент REST API GeoServer
	publisher *publisher.Publisher // Пошаговая публикация каталога
	info      *buildinfo.Info      // Сведения о сборке
}

// NewApp создает и инициализирует новый экземпляр приложения.
//
// Параметры:
//   - cfg: конфигурация запуска, должна проходить Validate
//   - logger: логгер; nil заменяется на zap.NewNop
//   - info: сведения о сборке для User-Agent; nil заменяется на buildinfo.DefaultInfo
//   - out, errOut: потоки для статусных строк оператора
//
// Возвращает указатель на App или ошибку, если конфигурация неполна.
func NewApp(cfg *config.Config, logger *zap.Logger, info *buildinfo.Info, out, errOut io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if info == nil {
		info = buildinfo.DefaultInfo()
	}

	client := geoserver.NewClient(cfg.GeoServerURL, cfg.Username, cfg.Password,
		geoserver.WithTimeout(cfg.HTTPTimeout),
		geoserver.WithUserAgent(info.UserAgent(Name)),
		geoserver.WithLogger(logger.Named("geoserver")),
	)

	pub := publisher.New(client, publisher.Options{
		DataDir:   cfg.DataDir,
		Charset:   cfg.Charset,
		DetectSRS: cfg.DetectSRS,
	}, logger.Named("publisher"), out, errOut)

	return &App{
		config:    cfg,
		logger:    logger,
		client:    client,
		publisher: pub,
		info:      info,
	}, nil
}

// Run выполняет одну публикацию. Блокирующий вызов.
//
// Возвращает сводку запуска или ошибку, если запуск прерван до обработки слоёв.
func (a *App) Run(ctx context.Context) (*publisher.Report, error) {
	a.logger.Info("Starting publish", append(a.info.Fields(),
		zap.String("geoserver", a.client.BaseURL()),
		zap.String("input", a.config.InputPath),
	)...)

	report, err := a.publisher.Run(ctx, publisher.Target{
		Workspace: a.config.Workspace,
		Datastore: a.config.Datastore,
		InputPath: a.config.InputPath,
		StyleName: a.config.StyleName,
	})
	if err != nil {
		return nil, fmt.Errorf("error publishing %s: %w", a.config.InputPath, err)
	}
	return report, nil
}

// Failed сообщает, должен ли процесс завершиться с ненулевым кодом
func (a *App) Failed(report *publisher.Report) bool {
	return a.config.StrictExit && report != nil && report.HasFailures()
}
