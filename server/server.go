// Package server implements the live-view server: it serves a page with a host element
// and, for each browser connected through a websocket, mounts an SVG view whose DOM
// operations are streamed to the browser as JSON.
//
// All views share the same model, so every change of its "svg" attribute is reflected
// in every open page.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rmorshead/nbsvg/common"
	"github.com/rmorshead/nbsvg/dom"
	"github.com/rmorshead/nbsvg/model"
	"github.com/rmorshead/nbsvg/protocol"
	"github.com/rmorshead/nbsvg/view"
	"k8s.io/klog/v2"
)

//go:embed page.html
var pageHtml string

//go:embed nbsvg.js
var shimJs []byte

var tmplPage = template.Must(template.New("page").Parse(pageHtml))

const (
	// DefaultWriteTimeout bounds how long a change of the model can be blocked by a slow browser.
	DefaultWriteTimeout = 10 * time.Second

	// ShutdownTimeout is how long ListenAndServe waits for requests to finish once its context is done.
	ShutdownTimeout = 5 * time.Second
)

// Server serves live views of one model.
type Server struct {
	model        *model.Model
	title        string
	writeTimeout time.Duration
	upgrader     websocket.Upgrader

	mu    sync.Mutex
	views common.Set[*view.SVGView]
	conns common.Set[*websocket.Conn]
}

// Option configures a Server.
type Option func(s *Server)

// WithTitle sets the title of the served page.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithWriteTimeout sets the deadline for each operation written to a browser.
// A browser that doesn't keep up is disconnected.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(s *Server) { s.writeTimeout = timeout }
}

// WithCheckOrigin sets the function used to accept websocket connections from other origins.
// By default, only same-origin connections are accepted.
func WithCheckOrigin(checkOrigin func(r *http.Request) bool) Option {
	return func(s *Server) { s.upgrader.CheckOrigin = checkOrigin }
}

// New creates a Server for m.
func New(m *model.Model, opts ...Option) *Server {
	s := &Server{
		model:        m,
		title:        "nbsvg",
		writeTimeout: DefaultWriteTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		views: common.MakeSet[*view.SVGView](),
		conns: common.MakeSet[*websocket.Conn](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the http.Handler serving the page, the javascript shim, the websocket,
// and the current drawing as a standalone SVG file in "/drawing.svg".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.servePage)
	mux.HandleFunc("GET /nbsvg.js", s.serveShim)
	mux.HandleFunc("GET /drawing.svg", s.serveDrawing)
	mux.HandleFunc("GET /ws", s.serveWebSocket)
	return mux
}

// Views returns the number of views currently connected.
func (s *Server) Views() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *Server) servePage(w http.ResponseWriter, _ *http.Request) {
	data := struct {
		Title, HostId string
	}{
		Title:  s.title,
		HostId: protocol.HostElementId,
	}
	var buf bytes.Buffer
	if err := tmplPage.Execute(&buf, data); err != nil {
		klog.Errorf("Failed to render page: %+v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", string(protocol.MIMETextHTML)+"; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) serveShim(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", string(protocol.MIMETextJavascript)+"; charset=utf-8")
	_, _ = w.Write(shimJs)
}

// serveDrawing writes the current markup, as is: it is only a valid SVG file if the
// markup is a complete `<svg>` element.
func (s *Server) serveDrawing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", string(protocol.MIMEImageSVG))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(s.model.String(view.AttrSVG)))
}

// serveWebSocket mounts a view for the connection, and keeps it until the connection is closed.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an error to the client.
		klog.Warningf("Failed to upgrade connection from %s to websocket: %v", r.RemoteAddr, err)
		return
	}
	defer func() { _ = conn.Close() }()

	var writeMu sync.Mutex
	doc := dom.NewRemote(dom.OpSenderFunc(func(op protocol.Op) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return errors.Wrapf(err, "failed to set write deadline")
		}
		if err := conn.WriteJSON(op); err != nil {
			// Unblocks the read loop below, which ends the view.
			_ = conn.Close()
			return errors.Wrapf(err, "failed to write to %s", conn.RemoteAddr())
		}
		return nil
	}))
	v := view.New(doc, protocol.HostElementId, s.model)

	s.mu.Lock()
	s.conns.Insert(conn)
	s.views.Insert(v)
	s.mu.Unlock()
	klog.V(1).Infof("Live view connected from %s", conn.RemoteAddr())

	v.Mount()
	defer func() {
		v.Close()
		s.mu.Lock()
		s.views.Delete(v)
		s.conns.Delete(conn)
		s.mu.Unlock()
	}()

	// The browser doesn't send anything: reading is only used to detect the end of the connection.
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				klog.Warningf("Live view from %s disconnected: %v", conn.RemoteAddr(), err)
			} else {
				klog.V(1).Infof("Live view from %s disconnected", conn.RemoteAddr())
			}
			return
		}
	}
}

// closeConnections closes all websocket connections, which are not tracked by http.Server.Shutdown.
func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}

// Serve serves on listener until ctx is done. Then it shuts down the server, and
// closes all live views.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()
	klog.Infof("Live view serving on http://%s/", listener.Addr())

	select {
	case err := <-serveErr:
		s.closeConnections()
		return errors.Wrapf(err, "live view server on %s failed", listener.Addr())
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.closeConnections()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errors.Wrapf(err, "failed to shutdown live view server on %s", listener.Addr())
	}
	klog.V(1).Infof("Live view server on %s stopped", listener.Addr())
	return nil
}

// ListenAndServe listens on the TCP address addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %q", addr)
	}
	return s.Serve(ctx, listener)
}
