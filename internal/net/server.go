package net

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/mdns"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/logging"
	"ColoringBoard/internal/pageload"
	"ColoringBoard/internal/state"
)

//go:embed web
var webFS embed.FS

// HTTPServer serves the browser front end.
type HTTPServer struct {
	Addr string
	// Advertise announces the server over mDNS once it listens.
	Advertise bool

	Catalog    *state.Catalog
	Favorites  *state.Favorites
	Thumbnails *state.Thumbnails
	Loader     *pageload.Loader
	Editor     editor.Options

	log   *slog.Logger
	peers *PeerManager

	mu     sync.Mutex
	srv    *http.Server
	ln     net.Listener
	zone   *mdns.Server
	closed bool
}

// NewHTTPServer returns a server for catalog on addr.
func NewHTTPServer(addr string, catalog *state.Catalog, favorites *state.Favorites, loader *pageload.Loader, opts editor.Options) *HTTPServer {
	return &HTTPServer{
		Addr:       addr,
		Catalog:    catalog,
		Favorites:  favorites,
		Loader:     loader,
		Thumbnails: state.NewThumbnails(loader.Load, state.DefaultThumbnailEdge),
		Editor:     opts,
		log:        logging.For("server"),
		peers:      NewPeerManager(DefaultMaxPeers),
	}
}

// SetMaxPeers changes the concurrent session limit. Call it before Start.
func (s *HTTPServer) SetMaxPeers(n int) {
	s.peers.mu.Lock()
	s.peers.max = n
	s.peers.mu.Unlock()
}

// Peers returns the connected session registry.
func (s *HTTPServer) Peers() *PeerManager { return s.peers }

// Handler returns the routes of the server.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/v1/pages/", s.handleThumbnail)
	mux.HandleFunc("GET /api/v1/favorites", s.handleFavorites)
	mux.HandleFunc("POST /api/v1/favorites/{id...}", s.handleToggleFavorite)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/qrcode", s.handleQRCode)
	mux.HandleFunc("GET /ws", s.handleWS)

	static, _ := fs.Sub(webFS, "web")
	fileServer := http.FileServer(http.FS(static))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	}))
	return mux
}

// Start listens on Addr and serves until Stop or until ctx is done.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	s.log.Info("listening", "addr", ln.Addr().String())

	if s.Advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		zone, err := Advertise(port)
		if err != nil {
			s.log.Warn("mdns advertise failed", "err", err)
		} else {
			s.zone = zone
			s.log.Info("advertising", "service", ServiceType, "port", port)
		}
	}

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		s.log.Error("serve", "err", err)
	}()
	return nil
}

// ListenAddr returns the bound address, or "" before Start.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// ShareURL returns the LAN link to this server.
func (s *HTTPServer) ShareURL() (string, error) {
	addr := s.ListenAddr()
	if addr == "" {
		addr = s.Addr
	}
	return ShareURL(addr)
}

// Stop closes every session and shuts the server down.
func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv, ln, zone := s.srv, s.ln, s.zone
	s.srv, s.ln, s.zone = nil, nil, nil
	s.mu.Unlock()

	if zone != nil {
		_ = zone.Shutdown()
	}
	s.peers.CloseAll()
	if ln != nil {
		_ = ln.Close()
	}
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
