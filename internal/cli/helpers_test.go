package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeBackend serves the application endpoints from memory.
type fakeBackend struct {
	mu      sync.Mutex
	records map[string]map[string]any
	calls   []string
	user    int // status of /v1/users/me/, 0 means 200
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	fb := &fakeBackend{records: make(map[string]map[string]any)}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	return fb, srv
}

func (fb *fakeBackend) put(id string, rec map[string]any) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	rec["id"] = id
	fb.records[id] = rec
}

func (fb *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.calls = append(fb.calls, r.Method+" "+r.URL.Path)

	if r.URL.Path == "/v1/users/me/" {
		if fb.user != 0 {
			w.WriteHeader(fb.user)
			return
		}
		writeJSON(w, map[string]any{"name": "Maija Meikäläinen", "organization_name": "Oy Testi Ab"})
		return
	}

	const prefix = "/v1/applications/"
	if len(r.URL.Path) <= len(prefix) {
		http.NotFound(w, r)
		return
	}
	id := r.URL.Path[len(prefix) : len(r.URL.Path)-1]
	rec, ok := fb.records[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, rec)
	case http.MethodDelete:
		delete(fb.records, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
