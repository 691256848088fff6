// Package models содержит типы данных, которыми обмениваются клиент GeoServer
// и оркестратор публикации: ограничивающий прямоугольник и тела REST запросов/ответов.
package models

import (
	"encoding/json"
	"fmt"
)

// WorkspaceRequest тело запроса POST /rest/workspaces
type WorkspaceRequest struct {
	Workspace WorkspaceInfo `json:"workspace"`
}

// WorkspaceInfo описывает рабочее пространство GeoServer
type WorkspaceInfo struct {
	Name string `json:"name"`
}

// DataStoreRequest тело запроса POST /rest/workspaces/{ws}/datastores
type DataStoreRequest struct {
	DataStore DataStoreInfo `json:"dataStore"`
}

// DataStoreInfo описывает хранилище данных, основанное на каталоге shapefile
type DataStoreInfo struct {
	Name                 string               `json:"name"`
	ConnectionParameters ConnectionParameters `json:"connectionParameters"`
}

// ConnectionParameters параметры подключения directory datastore
type ConnectionParameters struct {
	URL                     string `json:"url"`
	Charset                 string `json:"charset"`
	CreateSpatialIndex      string `json:"create spatial index"`
	CacheAndReuseMemoryMaps string `json:"cache and reuse memory maps"`
}

// FeatureTypeRequest тело запроса публикации или пересчёта feature type
type FeatureTypeRequest struct {
	FeatureType FeatureTypeInfo `json:"featureType"`
}

// FeatureTypeInfo описывает публикуемый feature type.
// Пустая структура сериализуется в {} и используется при пересчёте bbox.
type FeatureTypeInfo struct {
	Name    string `json:"name,omitempty"`
	SRS     string `json:"srs,omitempty"`
	Title   string `json:"title,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// LayerRequest тело запроса PUT /rest/layers/{ws}:{layer}
type LayerRequest struct {
	Layer LayerInfo `json:"layer"`
}

// LayerInfo содержит изменяемые атрибуты слоя
type LayerInfo struct {
	DefaultStyle StyleRef `json:"defaultStyle"`
}

// StyleRef ссылка на стиль внутри рабочего пространства
type StyleRef struct {
	Name      string `json:"name"`
	Workspace string `json:"workspace"`
}

// FeatureTypeResponse ответ GET .../featuretypes/{layer}.json
type FeatureTypeResponse struct {
	FeatureType FeatureTypeDetails `json:"featureType"`
}

// FeatureTypeDetails поля feature type, которые читает клиент.
// SRS поля хранятся как есть: nativeCRS бывает как строкой, так и объектом.
type FeatureTypeDetails struct {
	NativeBoundingBox *Envelope       `json:"nativeBoundingBox"`
	LatLonBoundingBox *Envelope       `json:"latLonBoundingBox"`
	SRS               json.RawMessage `json:"srs"`
	NativeCRS         json.RawMessage `json:"nativeCRS"`
	NativeSRS         json.RawMessage `json:"nativeSRS"`
}

// Envelope прямоугольник в формате GeoServer
type Envelope struct {
	MinX *json.Number `json:"minx"`
	MinY *json.Number `json:"miny"`
	MaxX *json.Number `json:"maxx"`
	MaxY *json.Number `json:"maxy"`
}

// Complete сообщает, заданы ли все четыре координаты
func (e *Envelope) Complete() bool {
	return e != nil && e.MinX != nil && e.MinY != nil && e.MaxX != nil && e.MaxY != nil
}

// BoundingBox переводит координаты во float64.
// Вызывать только после проверки Complete.
func (e *Envelope) BoundingBox() (BoundingBox, error) {
	var coords [4]float64
	for i, n := range []*json.Number{e.MinX, e.MinY, e.MaxX, e.MaxY} {
		v, err := n.Float64()
		if err != nil {
			return BoundingBox{}, fmt.Errorf("invalid coordinate %q: %w", n.String(), err)
		}
		coords[i] = v
	}
	return NewBoundingBox(coords[0], coords[1], coords[2], coords[3]), nil
}
