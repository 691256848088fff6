// Package fake поднимает в памяти упрощённый GeoServer REST API для тестов
// клиента и оркестратора публикации.
package fake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/InQaaaaGit/geo_publish.git/internal/models"
)

// Request запрос, полученный сервером
type Request struct {
	Method string
	Path   string // экранированный путь, как пришел по сети
	Query  string
	Header http.Header
	Body   []byte
}

// FeatureType состояние feature type на сервере
type FeatureType struct {
	Title   string
	SRS     string
	Enabled bool
	BBox    *models.BoundingBox
	// Body при непустом значении отдается на GET вместо сгенерированного JSON
	Body    string
	Recalcs []string
}

// Server упрощённый GeoServer. Ключи: "ws", "ws/store", "ws/store/layer", "ws:layer".
type Server struct {
	*httptest.Server

	Username string
	Password string

	mu           sync.Mutex
	workspaces   map[string]bool
	datastores   map[string]models.DataStoreInfo
	featureTypes map[string]*FeatureType
	layers       map[string]string // ws:layer -> стиль
	failPublish  map[string]bool
	requests     []Request

	// DefaultBBox выдается опубликованным feature type
	DefaultBBox models.BoundingBox
	// DefaultSRS объявляется опубликованным feature type
	DefaultSRS string
}

// NewServer запускает сервер с учётной записью admin/geoserver
func NewServer() *Server {
	s := &Server{
		Username:     "admin",
		Password:     "geoserver",
		workspaces:   make(map[string]bool),
		datastores:   make(map[string]models.DataStoreInfo),
		featureTypes: make(map[string]*FeatureType),
		layers:       make(map[string]string),
		failPublish:  make(map[string]bool),
		DefaultBBox:  models.NewBoundingBox(0, 0, 10, 10),
		DefaultSRS:   "EPSG:4326",
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.auth)

	r.Post("/rest/workspaces", s.handleCreateWorkspace)
	r.Get("/rest/workspaces/{ws}", s.handleGetWorkspace)
	r.Post("/rest/workspaces/{ws}/datastores", s.handleCreateDatastore)
	r.Get("/rest/workspaces/{ws}/datastores/{store}", s.handleGetDatastore)
	r.Post("/rest/workspaces/{ws}/datastores/{store}/featuretypes", s.handlePublish)
	r.Get("/rest/workspaces/{ws}/datastores/{store}/featuretypes/{layer}", s.handleGetFeatureType)
	r.Put("/rest/workspaces/{ws}/datastores/{store}/featuretypes/{layer}", s.handleRecalc)
	r.Get("/rest/layers/{qualified}", s.handleGetLayer)
	r.Put("/rest/layers/{qualified}", s.handleSetStyle)
	return r
}

// AddWorkspace регистрирует рабочее пространство
func (s *Server) AddWorkspace(ws string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaces[ws] = true
}

// AddDatastore регистрирует хранилище
func (s *Server) AddDatastore(ws, store, dirURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datastores[ws+"/"+store] = models.DataStoreInfo{
		Name:                 store,
		ConnectionParameters: models.ConnectionParameters{URL: dirURL},
	}
}

// AddFeatureType регистрирует feature type без слоя
func (s *Server) AddFeatureType(ws, store, layer string, ft FeatureType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.featureTypes[ws+"/"+store+"/"+layer] = &ft
}

// AddLayer регистрирует опубликованный слой вместе с его feature type
func (s *Server) AddLayer(ws, store, layer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := ws + "/" + store + "/" + layer
	if _, ok := s.featureTypes[key]; !ok {
		bbox := s.DefaultBBox
		s.featureTypes[key] = &FeatureType{Title: layer, SRS: s.DefaultSRS, Enabled: true, BBox: &bbox}
	}
	s.layers[ws+":"+layer] = ""
}

// FailPublish заставляет публикацию слоя завершаться статусом 500
func (s *Server) FailPublish(layer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failPublish[layer] = true
}

// HasWorkspace сообщает, существует ли рабочее пространство
func (s *Server) HasWorkspace(ws string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaces[ws]
}

// Datastore возвращает зарегистрированное хранилище
func (s *Server) Datastore(ws, store string) (models.DataStoreInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datastores[ws+"/"+store]
	return ds, ok
}

// FeatureType возвращает копию состояния feature type
func (s *Server) FeatureType(ws, store, layer string) (FeatureType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ft, ok := s.featureTypes[ws+"/"+store+"/"+layer]
	if !ok {
		return FeatureType{}, false
	}
	return *ft, true
}

// LayerStyle возвращает стиль слоя; ok == false, если слой не опубликован
func (s *Server) LayerStyle(ws, layer string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	style, ok := s.layers[ws+":"+layer]
	return style, ok
}

// Requests возвращает копию журнала запросов
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CountRequests считает запросы с данным методом и префиксом пути
func (s *Server) CountRequests(method, pathPrefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, pathPrefix) {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.EscapedPath(),
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req models.WorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Workspace.Name == "" {
		http.Error(w, "bad workspace", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspaces[req.Workspace.Name] {
		http.Error(w, "Workspace already exists", http.StatusConflict)
		return
	}
	s.workspaces[req.Workspace.Name] = true
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := trimJSON(param(r, "ws"))

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.workspaces[ws] {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{"workspace": map[string]string{"name": ws}})
}

func (s *Server) handleCreateDatastore(w http.ResponseWriter, r *http.Request) {
	ws := param(r, "ws")
	var req models.DataStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DataStore.Name == "" {
		http.Error(w, "bad datastore", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.workspaces[ws] {
		http.NotFound(w, r)
		return
	}
	s.datastores[ws+"/"+req.DataStore.Name] = req.DataStore
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetDatastore(w http.ResponseWriter, r *http.Request) {
	key := param(r, "ws") + "/" + trimJSON(param(r, "store"))

	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.datastores[key]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, models.DataStoreRequest{DataStore: ds})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	ws, store := param(r, "ws"), param(r, "store")
	var req models.FeatureTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FeatureType.Name == "" {
		http.Error(w, "bad featureType", http.StatusBadRequest)
		return
	}
	layer := req.FeatureType.Name

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPublish[layer] {
		http.Error(w, "Trying to create new feature type inside the store, but no attributes were specified", http.StatusInternalServerError)
		return
	}
	if _, ok := s.datastores[ws+"/"+store]; !ok {
		http.NotFound(w, r)
		return
	}

	srs := req.FeatureType.SRS
	if srs == "" {
		srs = s.DefaultSRS
	}
	bbox := s.DefaultBBox
	s.featureTypes[ws+"/"+store+"/"+layer] = &FeatureType{
		Title:   req.FeatureType.Title,
		SRS:     srs,
		Enabled: req.FeatureType.Enabled != nil && *req.FeatureType.Enabled,
		BBox:    &bbox,
	}
	s.layers[ws+":"+layer] = ""
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleGetFeatureType(w http.ResponseWriter, r *http.Request) {
	layer := trimJSON(param(r, "layer"))

	s.mu.Lock()
	defer s.mu.Unlock()
	ft, ok := s.featureTypes[param(r, "ws")+"/"+param(r, "store")+"/"+layer]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if ft.Body != "" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, ft.Body)
		return
	}

	body := map[string]any{
		"name":    layer,
		"title":   ft.Title,
		"enabled": ft.Enabled,
	}
	if ft.SRS != "" {
		body["srs"] = ft.SRS
	}
	if ft.BBox != nil {
		body["nativeBoundingBox"] = map[string]any{
			"minx": ft.BBox.MinX,
			"miny": ft.BBox.MinY,
			"maxx": ft.BBox.MaxX,
			"maxy": ft.BBox.MaxY,
			"crs":  ft.SRS,
		}
	}
	writeJSON(w, map[string]any{"featureType": body})
}

func (s *Server) handleRecalc(w http.ResponseWriter, r *http.Request) {
	layer := trimJSON(param(r, "layer"))

	s.mu.Lock()
	defer s.mu.Unlock()
	ft, ok := s.featureTypes[param(r, "ws")+"/"+param(r, "store")+"/"+layer]
	if !ok {
		http.NotFound(w, r)
		return
	}
	ft.Recalcs = append(ft.Recalcs, r.URL.Query().Get("recalculate"))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGetLayer(w http.ResponseWriter, r *http.Request) {
	qualified := trimJSON(param(r, "qualified"))

	s.mu.Lock()
	defer s.mu.Unlock()
	style, ok := s.layers[qualified]
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]any{"layer": map[string]any{
		"name":         qualified,
		"defaultStyle": map[string]string{"name": style},
	}})
}

func (s *Server) handleSetStyle(w http.ResponseWriter, r *http.Request) {
	qualified := param(r, "qualified")
	var req models.LayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad layer", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layers[qualified]; !ok {
		http.NotFound(w, r)
		return
	}
	s.layers[qualified] = req.Layer.DefaultStyle.Name
	w.WriteHeader(http.StatusOK)
}

// param возвращает параметр маршрута без процентного кодирования
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	v, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return v
}

func trimJSON(s string) string {
	return strings.TrimSuffix(s, ".json")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("encode: %v", err), http.StatusInternalServerError)
	}
}
