package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/spf13/pflag"
)

// ErrMissingValue возвращается, когда обязательный параметр не задан
var ErrMissingValue = errors.New("missing required value")

// Config хранит параметры одного запуска публикации.
type Config struct {
	GeoServerURL string        `env:"GEOSERVER_URL"`       // Адрес GeoServer, например http://localhost:8080/geoserver
	Username     string        `env:"GEOSERVER_USER"`      // Пользователь REST API
	Password     string        `env:"GEOSERVER_PASSWORD"`  // Пароль REST API
	Workspace    string        `env:"GEOSERVER_WORKSPACE"` // Рабочее пространство
	Datastore    string        `env:"GEOSERVER_DATASTORE"` // Хранилище shapefile
	InputPath    string        `env:"INPUT_PATH"`          // Каталог, .shp файл или .zip архив
	StyleName    string        `env:"STYLE_NAME"`          // Стиль; пусто или "auto" - не назначать
	DataDir      string        `env:"GEOSERVER_DATA_DIR"`  // Корень данных GeoServer для распаковки архивов
	Charset      string        `env:"DATASTORE_CHARSET"`   // Кодировка атрибутов .dbf
	DetectSRS    bool          `env:"PREVIEW_DETECT_SRS"`  // Брать SRS предпросмотра из описания слоя
	StrictExit   bool          `env:"STRICT_EXIT"`         // Ненулевой код выхода при ошибках публикации
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT"`        // Таймаут запроса, 0 - без ограничения
	ConfigFile   string        `env:"CONFIG"`              // Путь к JSON файлу конфигурации
	ShowVersion  bool          // Вывести версию и выйти, только флаг --version
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		GeoServerURL: "http://localhost:8080/geoserver",
		Username:     "admin",
		Password:     "geoserver",
		StyleName:    "auto",
		DataDir:      "/opt/geoserver/data_dir/data",
		Charset:      "GBK",
	}
}

// NewConfig инициализирует конфигурацию из аргументов процесса и переменных окружения.
func NewConfig() (*Config, error) {
	return Parse(os.Args[1:])
}

// Parse собирает конфигурацию. Приоритет (от низшего к высшему):
// значения по умолчанию, JSON файл, флаги командной строки, переменные окружения.
func Parse(args []string) (*Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("geo_publish", pflag.ContinueOnError)
	fs.StringVarP(&cfg.GeoServerURL, "url", "u", cfg.GeoServerURL, "GeoServer base URL (env: GEOSERVER_URL)")
	fs.StringVar(&cfg.Username, "user", cfg.Username, "GeoServer username (env: GEOSERVER_USER)")
	fs.StringVar(&cfg.Password, "password", cfg.Password, "GeoServer password (env: GEOSERVER_PASSWORD)")
	fs.StringVarP(&cfg.Workspace, "workspace", "w", cfg.Workspace, "workspace name (env: GEOSERVER_WORKSPACE)")
	fs.StringVarP(&cfg.Datastore, "datastore", "s", cfg.Datastore, "datastore name (env: GEOSERVER_DATASTORE)")
	fs.StringVarP(&cfg.InputPath, "input", "i", cfg.InputPath, "folder, .shp file or .zip archive (env: INPUT_PATH)")
	fs.StringVar(&cfg.StyleName, "style", cfg.StyleName, `default style for new layers, "auto" keeps GeoServer's choice (env: STYLE_NAME)`)
	fs.StringVarP(&cfg.DataDir, "data-dir", "d", cfg.DataDir, "GeoServer data root for extracted archives (env: GEOSERVER_DATA_DIR)")
	fs.StringVar(&cfg.Charset, "charset", cfg.Charset, "datastore charset (env: DATASTORE_CHARSET)")
	fs.BoolVar(&cfg.DetectSRS, "detect-srs", cfg.DetectSRS, "use the layer's declared SRS in preview links (env: PREVIEW_DETECT_SRS)")
	fs.BoolVar(&cfg.StrictExit, "strict", cfg.StrictExit, "exit non-zero when any shapefile fails to publish (env: STRICT_EXIT)")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "per-request timeout, 0 disables (env: HTTP_TIMEOUT)")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "JSON config file (env: CONFIG)")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Флаги, заданные явно, должны пережить применение JSON файла
	explicit := make(map[string]string)
	fs.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	configFile := cfg.ConfigFile
	if v, ok := os.LookupEnv("CONFIG"); ok && v != "" {
		configFile = v
	}
	jsonConfig, err := loadJSONConfig(configFile)
	if err != nil {
		return nil, err
	}
	cfg.applyJSONConfig(jsonConfig)

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return nil, fmt.Errorf("error restoring flag %s: %w", name, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет, что заданы параметры, без которых публикация невозможна
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.GeoServerURL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(c.Workspace) == "" {
		missing = append(missing, "workspace")
	}
	if strings.TrimSpace(c.Datastore) == "" {
		missing = append(missing, "datastore")
	}
	if strings.TrimSpace(c.InputPath) == "" {
		missing = append(missing, "input")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingValue, strings.Join(missing, ", "))
	}
	return nil
}
