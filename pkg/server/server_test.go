package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ryandielhenn/lrucache/pkg/cache"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c, err := cache.New(cache.Config[string, []byte]{
		Capacity:        10,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
		RecordStats:     true,
	})
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(c.Shutdown)
	return New(c, nil)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.Healthz(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestEntryPutGetDelete(t *testing.T) {
	s := newTestServer(t)

	put := httptest.NewRequest(http.MethodPut, "/cache/foo", strReader("bar"))
	rr := httptest.NewRecorder()
	s.Entry(rr, put)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("PUT status = %d, want 204", rr.Code)
	}

	get := httptest.NewRequest(http.MethodGet, "/cache/foo", nil)
	rr = httptest.NewRecorder()
	s.Entry(rr, get)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "bar" {
		t.Fatalf("GET body = %q, want bar", rr.Body.String())
	}

	del := httptest.NewRequest(http.MethodDelete, "/cache/foo", nil)
	rr = httptest.NewRecorder()
	s.Entry(rr, del)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", rr.Code)
	}

	getAgain := httptest.NewRequest(http.MethodGet, "/cache/foo", nil)
	rr = httptest.NewRecorder()
	s.Entry(rr, getAgain)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want 404", rr.Code)
	}
}

func TestEntryGetMiss(t *testing.T) {
	s := newTestServer(t)
	get := httptest.NewRequest(http.MethodGet, "/cache/missing", nil)
	rr := httptest.NewRecorder()
	s.Entry(rr, get)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestEntryDeleteMiss(t *testing.T) {
	s := newTestServer(t)
	del := httptest.NewRequest(http.MethodDelete, "/cache/missing", nil)
	rr := httptest.NewRecorder()
	s.Entry(rr, del)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestEntryMissingKeySegment(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/cache/", nil)
	rr := httptest.NewRecorder()
	s.Entry(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestKeysAndStats(t *testing.T) {
	s := newTestServer(t)
	s.Entry(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/cache/a", strReader("1")))
	s.Entry(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cache/a", nil))

	rr := httptest.NewRecorder()
	s.Keys(rr, httptest.NewRequest(http.MethodGet, "/cache", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Keys status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.Stats(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Stats status = %d, want 200", rr.Code)
	}
}

func strReader(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}
