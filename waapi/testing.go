package waapi

// Test double for the editor's authoring endpoint, shared by this
// package's tests and the scan pipeline tests.

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// A FakeHandler produces the return payload (an array of rows or a
// project-info shaped object) for one call, or a call error.
type FakeHandler func(method string, args, options map[string]any) (any, *CallError)

// FakeAuthoring is an in-process stand-in for the editor's authoring
// endpoint. Handlers are registered per method; unhandled methods produce
// a call error.
type FakeAuthoring struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	handlers map[string]FakeHandler
	calls    map[string]int
	conns    int
	open     map[*websocket.Conn]struct{}
}

// NewFakeAuthoring starts the fake endpoint. Callers must Close it.
func NewFakeAuthoring() *FakeAuthoring {
	f := &FakeAuthoring{
		handlers: make(map[string]FakeHandler),
		calls:    make(map[string]int),
		open:     make(map[*websocket.Conn]struct{}),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// Endpoint returns the host:port a Client should connect to.
func (f *FakeAuthoring) Endpoint() string {
	return strings.TrimPrefix(f.srv.URL, "http://")
}

// Handle registers the handler for one method.
func (f *FakeAuthoring) Handle(method string, h FakeHandler) {
	f.mu.Lock()
	f.handlers[method] = h
	f.mu.Unlock()
}

// Calls returns how many calls the fake has served for a method.
func (f *FakeAuthoring) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// Connections returns how many WebSocket connections were accepted.
func (f *FakeAuthoring) Connections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conns
}

// Close shuts the fake down, dropping any open connection.
func (f *FakeAuthoring) Close() {
	// httptest.Server stops tracking hijacked connections, so WebSocket
	// conns must be closed explicitly or they outlive the server.
	f.mu.Lock()
	for conn := range f.open {
		conn.Close()
	}
	f.mu.Unlock()
	f.srv.CloseClientConnections()
	f.srv.Close()
}

func (f *FakeAuthoring) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	f.mu.Lock()
	f.conns++
	f.open[conn] = struct{}{}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		delete(f.open, conn)
		f.mu.Unlock()
	}()

	for {
		var req struct {
			ID      uint64         `json:"id"`
			Method  string         `json:"method"`
			Args    map[string]any `json:"args"`
			Options map[string]any `json:"options"`
		}
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		f.mu.Lock()
		f.calls[req.Method]++
		h := f.handlers[req.Method]
		f.mu.Unlock()

		resp := map[string]any{"id": req.ID}
		if h == nil {
			resp["error"] = &CallError{
				URI:     "ak.wwise.error.unknown_method",
				Message: "no handler for " + req.Method,
			}
		} else if ret, cerr := h(req.Method, req.Args, req.Options); cerr != nil {
			resp["error"] = cerr
		} else {
			resp["return"] = ret
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}
