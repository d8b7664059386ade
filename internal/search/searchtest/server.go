// Package searchtest 内存版搜索引擎，只实现同步用到的几个接口
package searchtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

type Server struct {
	*httptest.Server

	APIKey string

	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	calls       map[string]int
	failNext    int
}

func NewServer(apiKey string) *Server {
	s := &Server{
		APIKey:      apiKey,
		collections: map[string]map[string]map[string]any{},
		calls:       map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /collections", s.createCollection)
	mux.HandleFunc("POST /collections/{name}/documents", s.createDoc)
	mux.HandleFunc("GET /collections/{name}/documents/{id}", s.getDoc)
	mux.HandleFunc("PATCH /collections/{name}/documents/{id}", s.patchDoc)
	mux.HandleFunc("DELETE /collections/{name}/documents/{id}", s.deleteDoc)

	s.Server = httptest.NewServer(s.auth(mux))
	return s
}

// FailNext 接下来 n 个请求返回 503
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// Calls 按 "METHOD" 统计的请求数
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Doc 直接读取存储的文档，不存在返回 nil
func (s *Server) Doc(collection, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	if docs == nil {
		return nil
	}
	return docs[id]
}

func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[collection])
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-TYPESENSE-API-KEY") != s.APIKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Forbidden - a valid `x-typesense-api-key` header must be sent."})
			return
		}
		s.mu.Lock()
		s.calls[r.Method]++
		fail := s.failNext > 0
		if fail {
			s.failNext--
		}
		s.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "Not Ready or Lagging"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var schema struct {
		Name                string           `json:"name"`
		Fields              []map[string]any `json:"fields"`
		DefaultSortingField string           `json:"default_sorting_field"`
	}
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil || schema.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad schema"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[schema.Name]; ok {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "A collection with name `" + schema.Name + "` already exists."})
		return
	}
	s.collections[schema.Name] = map[string]map[string]any{}
	writeJSON(w, http.StatusCreated, map[string]any{
		"name":                  schema.Name,
		"fields":                schema.Fields,
		"default_sorting_field": schema.DefaultSortingField,
		"num_documents":         0,
		"created_at":            0,
	})
}

func (s *Server) createDoc(w http.ResponseWriter, r *http.Request) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad document"})
		return
	}
	id, _ := doc["id"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.collections[r.PathValue("name")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not found."})
		return
	}
	if _, exists := docs[id]; exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "A document with id " + id + " already exists."})
		return
	}
	docs[id] = doc
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) getDoc(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[r.PathValue("name")][r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Could not find a document with id: " + r.PathValue("id")})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) patchDoc(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad document"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[r.PathValue("name")][r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Could not find a document with id: " + r.PathValue("id")})
		return
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteDoc(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[r.PathValue("name")]
	doc, ok := docs[r.PathValue("id")]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Could not find a document with id: " + r.PathValue("id")})
		return
	}
	delete(docs, r.PathValue("id"))
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
