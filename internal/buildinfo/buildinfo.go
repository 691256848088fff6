// Package buildinfo хранит сведения о сборке: версию, дату и commit hash.
// Значения подставляются через -ldflags "-X main.buildVersion=..." в cmd/publisher.
package buildinfo

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

const notAvailable = "N/A"

// Info содержит информацию о сборке приложения
type Info struct {
	Version string
	Date    string
	Commit  string
}

// NewInfo создает структуру с информацией о сборке; пустые значения заменяются на N/A
func NewInfo(version, date, commit string) *Info {
	return &Info{
		Version: orNA(version),
		Date:    orNA(date),
		Commit:  orNA(commit),
	}
}

// DefaultInfo возвращает информацию о сборке по умолчанию
func DefaultInfo() *Info {
	return NewInfo("", "", "")
}

// Fprint выводит информацию о сборке в w
func (info *Info) Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n",
		info.Version, info.Date, info.Commit)
	return err
}

// String возвращает строковое представление информации о сборке
func (info *Info) String() string {
	return fmt.Sprintf("Version: %s, Date: %s, Commit: %s", info.Version, info.Date, info.Commit)
}

// UserAgent значение заголовка User-Agent для запросов к GeoServer
func (info *Info) UserAgent(name string) string {
	return name + "/" + info.Version
}

// Fields поля для стартовой записи лога
func (info *Info) Fields() []zap.Field {
	return []zap.Field{
		zap.String("version", info.Version),
		zap.String("build_date", info.Date),
		zap.String("commit", info.Commit),
	}
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
