package geoserver

import (
	"context"
	"net/url"
	"strings"

	"github.com/InQaaaaGit/geo_publish.git/internal/models"
	"go.uber.org/zap"
)

// DefaultPreviewSRS SRS предпросмотра, если слой не объявил свою
const DefaultPreviewSRS = "EPSG:3857"

const (
	previewWidth  = "768"
	previewHeight = "494"
	previewFormat = "application/openlayers"
)

// PreviewURL строит ссылку WMS GetMap в формате OpenLayers с SRS EPSG:3857.
// Сетевых запросов не выполняет.
func (c *Client) PreviewURL(ws, layer string, bbox models.BoundingBox) string {
	return c.previewURL(ws, layer, bbox, DefaultPreviewSRS)
}

// PreviewURLWithSRS как PreviewURL, но берёт SRS из описания feature type.
// При ошибке, отсутствии или пустом значении используется EPSG:3857.
// Координаты bbox не перепроецируются.
func (c *Client) PreviewURLWithSRS(ctx context.Context, ws, store, layer string, bbox models.BoundingBox) string {
	srs := DefaultPreviewSRS
	declared, ok, err := c.FeatureTypeSRS(ctx, ws, store, layer)
	switch {
	case err != nil:
		c.logger.Debug("SRS lookup failed, using default",
			zap.String("layer", layer), zap.Error(err))
	case ok && strings.TrimSpace(declared) != "":
		srs = declared
	}
	return c.previewURL(ws, layer, bbox, srs)
}

func (c *Client) previewURL(ws, layer string, bbox models.BoundingBox, srs string) string {
	// порядок параметров фиксирован, url.Values отсортировал бы ключи
	params := []struct{ key, value string }{
		{"service", "WMS"},
		{"version", "1.1.0"},
		{"request", "GetMap"},
		{"layers", ws + ":" + layer},
		{"bbox", bbox.String()},
		{"width", previewWidth},
		{"height", previewHeight},
		{"srs", srs},
		{"styles", ""},
		{"format", previewFormat},
	}

	var query strings.Builder
	for i, p := range params {
		if i > 0 {
			query.WriteByte('&')
		}
		query.WriteString(p.key)
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.value))
	}

	return c.baseURL + "/" + seg(ws) + "/wms?" + query.String()
}
