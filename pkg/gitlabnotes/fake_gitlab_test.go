/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package gitlabnotes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

type fakeNote struct {
	ID   int    `json:"id"`
	Body string `json:"body"`
}

// fakeGitLab serves the merge request notes endpoints for a single MR.
type fakeGitLab struct {
	t        *testing.T
	token    string
	pageSize int

	mu     sync.Mutex
	notes  []fakeNote
	nextID int
	// requests records "METHOD path?query" for every notes request.
	requests []string
	// status, when non-zero, is returned for every request.
	status int
}

func newFakeGitLab(t *testing.T, pageSize int, notes ...fakeNote) (*fakeGitLab, *httptest.Server) {
	f := &fakeGitLab{t: t, token: "glpat-test", pageSize: pageSize, nextID: 500}
	f.notes = append(f.notes, notes...)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/projects/{pid}/merge_requests/{iid}/notes", f.list)
	mux.HandleFunc("POST /api/v4/projects/{pid}/merge_requests/{iid}/notes", f.create)
	mux.HandleFunc("PUT /api/v4/projects/{pid}/merge_requests/{iid}/notes/{id}", f.update)

	srv := httptest.NewServer(f.middleware(mux))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeGitLab) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.RequestURI())
		status := f.status
		f.mu.Unlock()

		if status != 0 {
			writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
			return
		}
		if r.Header.Get("PRIVATE-TOKEN") != f.token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "401 Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// knownMR reports whether the request targets the one merge request served.
func knownMR(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("pid") != "123" || r.PathValue("iid") != "45" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "404 Not found"})
		return false
	}
	return true
}

func (f *fakeGitLab) list(w http.ResponseWriter, r *http.Request) {
	if !knownMR(w, r) {
		return
	}
	q := r.URL.Query()
	if q.Get("order_by") != "created_at" || q.Get("sort") != "asc" {
		f.t.Errorf("list notes: order_by=%q sort=%q, want created_at asc", q.Get("order_by"), q.Get("sort"))
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	start := (page - 1) * f.pageSize
	end := min(start+f.pageSize, len(f.notes))
	out := []fakeNote{}
	if start < len(f.notes) {
		out = append(out, f.notes[start:end]...)
	}
	if end < len(f.notes) {
		w.Header().Set("X-Next-Page", strconv.Itoa(page+1))
	}
	w.Header().Set("X-Page", strconv.Itoa(page))
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeGitLab) create(w http.ResponseWriter, r *http.Request) {
	if !knownMR(w, r) {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := fakeNote{ID: f.nextID, Body: req.Body}
	f.notes = append(f.notes, n)
	writeJSON(w, http.StatusCreated, n)
}

func (f *fakeGitLab) update(w http.ResponseWriter, r *http.Request) {
	if !knownMR(w, r) {
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	id, _ := strconv.Atoi(r.PathValue("id"))

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notes {
		if f.notes[i].ID == id {
			f.notes[i].Body = req.Body
			writeJSON(w, http.StatusOK, f.notes[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("404 Note %d Not Found", id)})
}

func (f *fakeGitLab) snapshot() []fakeNote {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeNote(nil), f.notes...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
