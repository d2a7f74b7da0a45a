package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
)

// Token is the bearer token tests sign in with.
const Token = "test-token"

// RecordedRequest is one request seen by FakeAPI.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	Form   url.Values
}

// FakeAPI is an httptest server standing in for the BizMate API.
// Unregistered routes answer 404 with a FastAPI style detail.
type FakeAPI struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]http.HandlerFunc
	requests map[string][]RecordedRequest
	gates    []*Gate
}

// NewFakeAPI starts a fake API that is shut down when the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		routes:   make(map[string]http.HandlerFunc),
		requests: make(map[string][]RecordedRequest),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(func() {
		f.releaseAll()
		f.server.Close()
	})
	return f
}

// URL is the base URL of the fake API.
func (f *FakeAPI) URL() string {
	return f.server.URL
}

// Handle registers h for method and path.
func (f *FakeAPI) Handle(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key(method, path)] = h
}

// Reply registers a canned answer. A string body is sent verbatim; anything
// else is encoded as JSON.
func (f *FakeAPI) Reply(method, path string, status int, body any) {
	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, status, body)
	})
}

// Gate registers a canned answer that is held back until the gate is
// released.
func (f *FakeAPI) Gate(method, path string, status int, body any) *Gate {
	g := &Gate{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
	f.mu.Lock()
	f.gates = append(f.gates, g)
	f.mu.Unlock()

	f.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		g.entered <- struct{}{}
		select {
		case <-g.release:
		case <-r.Context().Done():
			return
		}
		writeBody(w, status, body)
	})
	return g
}

// Calls counts the requests made to method and path.
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests[key(method, path)])
}

// TotalCalls counts every request the fake has seen.
func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, reqs := range f.requests {
		n += len(reqs)
	}
	return n
}

// Last returns the latest request to method and path.
func (f *FakeAPI) Last(method, path string) (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := f.requests[key(method, path)]
	if len(reqs) == 0 {
		return RecordedRequest{}, false
	}
	return reqs[len(reqs)-1], true
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		rec.Form, _ = url.ParseQuery(string(body))
	}

	k := key(r.Method, r.URL.Path)
	f.mu.Lock()
	f.requests[k] = append(f.requests[k], rec)
	h, ok := f.routes[k]
	f.mu.Unlock()

	if !ok {
		writeBody(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
		return
	}
	h(w, r)
}

func (f *FakeAPI) releaseAll() {
	f.mu.Lock()
	gates := append([]*Gate(nil), f.gates...)
	f.mu.Unlock()
	for _, g := range gates {
		g.Release()
	}
}

func key(method, path string) string {
	return method + " " + path
}

func writeBody(w http.ResponseWriter, status int, body any) {
	var data []byte
	switch b := body.(type) {
	case nil:
	case string:
		data = []byte(b)
	case []byte:
		data = b
	default:
		data, _ = sonic.Marshal(b)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// Gate holds a route's responses until released.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// Entered receives once per request that reached the gate.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets every held and future request through.
func (g *Gate) Release() {
	g.once.Do(func() { close(g.release) })
}
