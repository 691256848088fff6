// Package geoserver реализует клиент REST API администрирования GeoServer:
// проверку и создание рабочих пространств, хранилищ, feature type и слоёв,
// пересчёт bbox, назначение стиля и построение ссылки предпросмотра WMS.
package geoserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/InQaaaaGit/geo_publish.git/internal/middleware"
	"github.com/InQaaaaGit/geo_publish.git/internal/models"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"

	// RecalcAll пересчитывает и нативный, и географический bbox
	RecalcAll = "nativebbox,latlonbbox"
)

// Client выполняет запросы к REST API одного экземпляра GeoServer.
// Состояние сессии не хранится: каждый запрос несёт Basic-аутентификацию.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option настраивает Client
type Option func(*options)

type options struct {
	transport http.RoundTripper
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

// WithTransport задает базовый транспорт (по умолчанию http.DefaultTransport)
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithTimeout ограничивает время одного запроса; 0 означает без ограничения
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUserAgent задает заголовок User-Agent
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithLogger задает логгер для запросов
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// NewClient создает клиент для baseURL (завершающий "/" отбрасывается)
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	headers := map[string]string{"Accept": contentTypeJSON}
	if o.userAgent != "" {
		headers["User-Agent"] = o.userAgent
	}

	transport := middleware.Chain(o.transport,
		middleware.WithLogging(o.logger),
		middleware.WithHeaders(headers),
		middleware.WithBasicAuth(username, password),
	)

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: o.timeout},
		logger:     o.logger,
	}
}

// BaseURL возвращает адрес GeoServer без завершающего "/"
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WorkspaceExists проверяет наличие рабочего пространства
func (c *Client) WorkspaceExists(ctx context.Context, ws string) (bool, error) {
	return c.exists(ctx, "/rest/workspaces/"+seg(ws)+".json")
}

// CreateWorkspace создает рабочее пространство; 200 и 201 считаются успехом
func (c *Client) CreateWorkspace(ctx context.Context, ws string) (bool, error) {
	body := models.WorkspaceRequest{Workspace: models.WorkspaceInfo{Name: ws}}
	return c.created(ctx, http.MethodPost, "/rest/workspaces", body)
}

// DatastoreExists проверяет наличие хранилища в рабочем пространстве
func (c *Client) DatastoreExists(ctx context.Context, ws, store string) (bool, error) {
	return c.exists(ctx, datastorePath(ws, store)+".json")
}

// CreateDirectoryDatastore регистрирует каталог shapefile как хранилище данных.
// Путь folder приводится к прямым слешам с завершающим "/" и префиксом file:.
func (c *Client) CreateDirectoryDatastore(ctx context.Context, ws, store, folder, charset string) (bool, error) {
	body := models.DataStoreRequest{
		DataStore: models.DataStoreInfo{
			Name: store,
			ConnectionParameters: models.ConnectionParameters{
				URL:                     DirectoryURL(folder),
				Charset:                 charset,
				CreateSpatialIndex:      "true",
				CacheAndReuseMemoryMaps: "true",
			},
		},
	}
	return c.created(ctx, http.MethodPost, "/rest/workspaces/"+seg(ws)+"/datastores", body)
}

// FeatureTypeExists проверяет наличие feature type в хранилище
func (c *Client) FeatureTypeExists(ctx context.Context, ws, store, layer string) (bool, error) {
	return c.exists(ctx, featureTypePath(ws, store, layer)+".json")
}

// LayerExists проверяет, опубликован ли слой ws:layer
func (c *Client) LayerExists(ctx context.Context, ws, layer string) (bool, error) {
	return c.exists(ctx, layerPath(ws, layer)+".json")
}

// PublishFeatureType публикует feature type из хранилища.
// При пустом srs поле не передается и GeoServer берёт CRS из .prj файла.
func (c *Client) PublishFeatureType(ctx context.Context, ws, store, layer, title, srs string) (bool, error) {
	enabled := true
	info := models.FeatureTypeInfo{Name: layer, Title: title, Enabled: &enabled}
	if strings.TrimSpace(srs) != "" {
		info.SRS = srs
	}
	body := models.FeatureTypeRequest{FeatureType: info}
	return c.created(ctx, http.MethodPost, datastorePath(ws, store)+"/featuretypes", body)
}

// SetDefaultStyle назначает слою стиль по умолчанию из того же рабочего пространства
func (c *Client) SetDefaultStyle(ctx context.Context, ws, layer, style string) (bool, error) {
	body := models.LayerRequest{
		Layer: models.LayerInfo{
			DefaultStyle: models.StyleRef{Name: style, Workspace: ws},
		},
	}
	return c.created(ctx, http.MethodPut, layerPath(ws, layer), body)
}

// RecalcFeatureTypeBBox просит GeoServer пересчитать bbox; which обычно RecalcAll
func (c *Client) RecalcFeatureTypeBBox(ctx context.Context, ws, store, layer, which string) (bool, error) {
	path := featureTypePath(ws, store, layer) + ".json?recalculate=" + url.QueryEscape(which)
	body := models.FeatureTypeRequest{}
	return c.created(ctx, http.MethodPut, path, body)
}

// FeatureTypeBBox возвращает нативный bbox feature type, либо географический,
// если нативного нет. ok == false, если статус не 200 или координат не хватает.
func (c *Client) FeatureTypeBBox(ctx context.Context, ws, store, layer string) (bbox models.BoundingBox, ok bool, err error) {
	ft, found, err := c.featureType(ctx, ws, store, layer)
	if err != nil || !found {
		return models.BoundingBox{}, false, err
	}

	envelope := ft.NativeBoundingBox
	if envelope == nil {
		envelope = ft.LatLonBoundingBox
	}
	if !envelope.Complete() {
		return models.BoundingBox{}, false, nil
	}

	bbox, err = envelope.BoundingBox()
	if err != nil {
		return models.BoundingBox{}, false, &MalformedResponseError{URL: c.url(featureTypePath(ws, store, layer) + ".json"), Err: err}
	}
	return bbox, true, nil
}

// FeatureTypeSRS возвращает объявленную SRS (например "EPSG:4326"), проверяя
// поля srs, nativeCRS и nativeSRS по порядку. ok == false, если ни одно не задано.
func (c *Client) FeatureTypeSRS(ctx context.Context, ws, store, layer string) (srs string, ok bool, err error) {
	ft, found, err := c.featureType(ctx, ws, store, layer)
	if err != nil || !found {
		return "", false, err
	}

	for _, raw := range []json.RawMessage{ft.SRS, ft.NativeCRS, ft.NativeSRS} {
		if isNull(raw) {
			continue
		}
		return textValue(raw), true, nil
	}
	return "", false, nil
}

func (c *Client) featureType(ctx context.Context, ws, store, layer string) (*models.FeatureTypeDetails, bool, error) {
	path := featureTypePath(ws, store, layer) + ".json"
	status, data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, false, err
	}
	if status != http.StatusOK {
		return nil, false, nil
	}

	var resp models.FeatureTypeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, &MalformedResponseError{URL: c.url(path), Err: err}
	}
	return &resp.FeatureType, true, nil
}

// exists возвращает true только на 200; прочие статусы означают "нет"
func (c *Client) exists(ctx context.Context, path string) (bool, error) {
	status, _, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusOK, nil
}

// created отправляет JSON и считает успехом 200 или 201
func (c *Client) created(ctx context.Context, method, path string, payload any) (bool, error) {
	status, data, err := c.do(ctx, method, path, payload)
	if err != nil {
		return false, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		c.logger.Info("GeoServer rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("body", truncate(string(data), 512)),
		)
		return false, nil
	}
	return true, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	target := c.url(path)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("error marshaling request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, &NetworkError{Op: method, URL: target, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &NetworkError{Op: method, URL: target, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("Error closing response body", zap.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &NetworkError{Op: method, URL: target, Err: err}
	}
	return resp.StatusCode, data, nil
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// DirectoryURL переводит путь каталога в значение параметра url хранилища: file:/path/to/dir/
func DirectoryURL(folder string) string {
	normalized := strings.ReplaceAll(folder, `\`, "/")
	if !strings.HasSuffix(normalized, "/") {
		normalized += "/"
	}
	return "file:" + normalized
}

// seg кодирует один сегмент пути; ":" кодируется, чтобы не спутать его
// с разделителем ws:layer
func seg(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ":", "%3A")
}

func datastorePath(ws, store string) string {
	return "/rest/workspaces/" + seg(ws) + "/datastores/" + seg(store)
}

func featureTypePath(ws, store, layer string) string {
	return datastorePath(ws, store) + "/featuretypes/" + seg(layer)
}

// layerPath двоеточие между ws и layer не кодируется
func layerPath(ws, layer string) string {
	return "/rest/layers/" + seg(ws) + ":" + seg(layer)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// textValue строка для JSON строки, литерал для чисел и bool, "" для объектов и массивов
func textValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return ""
	}
	return string(trimmed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
