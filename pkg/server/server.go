// Package server exposes a single cache.Cache instance over HTTP. It
// implements the REST surface from SPEC_FULL.md §6: there is exactly one
// engine and no peer awareness, since distribution and replication are
// explicit non-goals of the core this repository builds.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ryandielhenn/lrucache/pkg/cache"
)

// Server wires an *cache.Cache[string, []byte] to a net/http mux.
type Server struct {
	c   *cache.Cache[string, []byte]
	log *zap.Logger
}

// New builds a Server around an existing cache. It does not own the
// cache's lifecycle: callers are responsible for calling Shutdown on the
// underlying Cache themselves.
func New(c *cache.Cache[string, []byte], log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{c: c, log: log}
}

// Healthz reports liveness. It is always 200 while the process is up:
// there is no readiness dependency (no peers, no external store) for a
// single-node embedded cache to wait on.
func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Stats writes a JSON snapshot of the live statistics counters.
func (s *Server) Stats(w http.ResponseWriter, _ *http.Request) {
	snap := s.c.Stats().Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// Keys writes a JSON array of the current key set.
func (s *Server) Keys(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.c.Keys())
}

const keyPrefix = "/cache/"

func keyFromPath(path string) string {
	return strings.TrimPrefix(path, keyPrefix)
}

// Entry routes GET/PUT/DELETE against a single key at /cache/{key}.
func (s *Server) Entry(w http.ResponseWriter, req *http.Request) {
	key := keyFromPath(req.URL.Path)
	if key == "" {
		http.Error(w, "missing key", http.StatusBadRequest)
		return
	}

	switch req.Method {
	case http.MethodGet:
		v, ok := s.c.Get(key)
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(v)
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if body == nil {
			body = []byte{}
		}
		s.c.Put(key, body)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if s.c.Remove(key) {
			w.WriteHeader(http.StatusNoContent)
		} else {
			http.NotFound(w, req)
		}
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Info writes a small JSON payload with process metadata, matching the
// teacher's own /info endpoint shape.
func (s *Server) Info(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		PID   int       `json:"pid"`
		Now   time.Time `json:"now"`
		Items int       `json:"items"`
	}
	data, _ := json.Marshal(resp{PID: os.Getpid(), Now: time.Now(), Items: s.c.Size()})
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
