package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"
)

// FakeRequest is one request observed by FakeAPI.
type FakeRequest struct {
	Method string
	Path   string
	Body   map[string]any
}

// FakeLogin is an account accepted by POST /auth/login.
type FakeLogin struct {
	Password string
	User     map[string]any
}

// FakeAPI is an in-memory REST API with one collection per registered path.
//
//	GET    {path}       list every record
//	POST   {path}       create, assigns a numeric id
//	PUT    {path}/{id}  merge fields into the record
//	DELETE {path}/{id}  remove the record
//	POST   /auth/login  credential login
type FakeAPI struct {
	Server *httptest.Server

	mu          sync.Mutex
	collections map[string][]map[string]any
	logins      map[string]FakeLogin
	failures    map[string]int
	requests    []FakeRequest
	envelope    string
	delay       time.Duration
	nextID      int
}

// NewFakeAPI starts the fake server with empty collections at the given paths.
// The server is closed when the test ends.
func NewFakeAPI(t TestingTB, paths ...string) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		collections: make(map[string][]map[string]any, len(paths)),
		logins:      make(map[string]FakeLogin),
		failures:    make(map[string]int),
		nextID:      1000,
	}
	for _, p := range paths {
		f.collections[normalizePath(p)] = nil
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake server.
func (f *FakeAPI) URL() string { return f.Server.URL }

// Seed appends records to a collection, creating it if needed.
func (f *FakeAPI) Seed(path string, records ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := normalizePath(path)
	for _, r := range records {
		f.collections[p] = append(f.collections[p], cloneRecord(r))
	}
}

// Records returns a snapshot of a collection.
func (f *FakeAPI) Records(path string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := f.collections[normalizePath(path)]
	out := make([]map[string]any, 0, len(src))
	for _, r := range src {
		out = append(out, cloneRecord(r))
	}
	return out
}

// AddLogin registers credentials for POST /auth/login.
func (f *FakeAPI) AddLogin(email string, login FakeLogin) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins[strings.ToLower(email)] = login
}

// FailWith makes every request matching method and path answer with status.
func (f *FakeAPI) FailWith(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+normalizePath(path)] = status
}

// WrapList makes list responses an object {key: [...]} instead of a bare array.
func (f *FakeAPI) WrapList(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envelope = key
}

// SetDelay delays every response.
func (f *FakeAPI) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// Requests returns the observed requests in order.
func (f *FakeAPI) Requests() []FakeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]FakeRequest(nil), f.requests...)
}

// RequestCount returns how many requests matched method and path.
func (f *FakeAPI) RequestCount(method, path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	path := normalizePath(r.URL.Path)

	f.mu.Lock()
	f.requests = append(f.requests, FakeRequest{Method: r.Method, Path: path, Body: body})
	delay := f.delay
	status, fail := f.failures[r.Method+" "+path]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fail {
		http.Error(w, http.StatusText(status), status)
		return
	}

	if r.Method == http.MethodPost && path == "/auth/login" {
		f.login(w, body)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.collections[path]; ok {
		switch r.Method {
		case http.MethodGet:
			f.list(w, path)
		case http.MethodPost:
			f.create(w, path, body)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	collection, id := f.splitItem(path)
	if collection == "" {
		http.NotFound(w, r)
		return
	}
	idx := f.indexOf(collection, id)
	if idx < 0 {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeFakeJSON(w, http.StatusOK, f.collections[collection][idx])
	case http.MethodPut:
		rec := f.collections[collection][idx]
		for k, v := range body {
			if k == "id" {
				continue
			}
			rec[k] = v
		}
		writeFakeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		recs := f.collections[collection]
		f.collections[collection] = append(recs[:idx:idx], recs[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeAPI) list(w http.ResponseWriter, path string) {
	recs := f.collections[path]
	if recs == nil {
		recs = []map[string]any{}
	}
	if f.envelope != "" {
		writeFakeJSON(w, http.StatusOK, map[string]any{f.envelope: recs})
		return
	}
	writeFakeJSON(w, http.StatusOK, recs)
}

func (f *FakeAPI) create(w http.ResponseWriter, path string, body map[string]any) {
	f.nextID++
	rec := cloneRecord(body)
	rec["id"] = float64(f.nextID)
	f.collections[path] = append(f.collections[path], rec)
	writeFakeJSON(w, http.StatusCreated, rec)
}

func (f *FakeAPI) login(w http.ResponseWriter, body map[string]any) {
	email, _ := body["email"].(string)
	password, _ := body["password"].(string)

	f.mu.Lock()
	login, ok := f.logins[strings.ToLower(email)]
	f.mu.Unlock()

	if !ok || login.Password != password {
		writeFakeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	writeFakeJSON(w, http.StatusOK, login.User)
}

// splitItem resolves {collection}/{id}, preferring the longest registered collection.
func (f *FakeAPI) splitItem(path string) (string, string) {
	keys := make([]string, 0, len(f.collections))
	for k := range f.collections {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		if rest, ok := strings.CutPrefix(path, k+"/"); ok && rest != "" && !strings.Contains(rest, "/") {
			return k, rest
		}
	}
	return "", ""
}

func (f *FakeAPI) indexOf(collection, id string) int {
	for i, r := range f.collections[collection] {
		if fmt.Sprint(r["id"]) == id {
			return i
		}
	}
	return -1
}

func normalizePath(p string) string {
	p = "/" + strings.Trim(p, "/")
	return p
}

func cloneRecord(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func writeFakeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
