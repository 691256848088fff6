package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// JSONConfig содержит параметры из JSON файла. nil означает "не задано".
type JSONConfig struct {
	GeoServerURL *string `json:"geoserver_url"`
	Username     *string `json:"username"`
	Password     *string `json:"password"`
	Workspace    *string `json:"workspace"`
	Datastore    *string `json:"datastore"`
	InputPath    *string `json:"input_path"`
	StyleName    *string `json:"style_name"`
	DataDir      *string `json:"data_dir"`
	Charset      *string `json:"charset"`
	DetectSRS    *bool   `json:"detect_srs"`
	StrictExit   *bool   `json:"strict_exit"`
	HTTPTimeout  *string `json:"http_timeout"` // в формате time.ParseDuration, например "30s"
}

// loadJSONConfig читает файл конфигурации. Пустое имя и отсутствующий файл
// дают пустую конфигурацию без ошибки.
func loadJSONConfig(filename string) (*JSONConfig, error) {
	cfg := &JSONConfig{}
	if filename == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", filename, err)
	}

	if cfg.HTTPTimeout != nil {
		if _, err := time.ParseDuration(*cfg.HTTPTimeout); err != nil {
			return nil, fmt.Errorf("invalid http_timeout in %s: %w", filename, err)
		}
	}

	return cfg, nil
}

// applyJSONConfig переносит заданные в файле значения в конфигурацию
func (c *Config) applyJSONConfig(j *JSONConfig) {
	setString(&c.GeoServerURL, j.GeoServerURL)
	setString(&c.Username, j.Username)
	setString(&c.Password, j.Password)
	setString(&c.Workspace, j.Workspace)
	setString(&c.Datastore, j.Datastore)
	setString(&c.InputPath, j.InputPath)
	setString(&c.StyleName, j.StyleName)
	setString(&c.DataDir, j.DataDir)
	setString(&c.Charset, j.Charset)

	if j.DetectSRS != nil {
		c.DetectSRS = *j.DetectSRS
	}
	if j.StrictExit != nil {
		c.StrictExit = *j.StrictExit
	}
	if j.HTTPTimeout != nil {
		// формат проверен в loadJSONConfig
		if d, err := time.ParseDuration(*j.HTTPTimeout); err == nil {
			c.HTTPTimeout = d
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
