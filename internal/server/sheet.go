package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/config"
)

// ShutdownTimeout bounds how long Stop waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// SheetService serves one precomputed HTML document. The port is bound by
// Listen so a port already in use is reported before any generation work;
// requests are only served once Start runs.
type SheetService struct {
	logger   *zap.Logger
	listener net.Listener
	server   *http.Server

	mu  sync.RWMutex
	doc []byte
}

// Listen binds the configured address.
//
// Precondition: logger must be non-nil.
// Postcondition: on success the port is held until Stop or Close.
func Listen(cfg config.HTTPConfig, logger *zap.Logger) (*SheetService, error) {
	if logger == nil {
		panic("server: Listen requires a logger")
	}
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", cfg.Addr(), err)
	}
	s := &SheetService{logger: logger, listener: ln}
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Addr returns the bound address.
func (s *SheetService) Addr() string { return s.listener.Addr().String() }

// URL returns the address of the sheet.
func (s *SheetService) URL() string { return "http://" + s.Addr() + "/" }

// SetDocument replaces the served document.
func (s *SheetService) SetDocument(doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
}

// Start serves until Stop is called.
func (s *SheetService) Start() error {
	s.logger.Info("serving character sheet", zap.String("url", s.URL()))
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting up to ShutdownTimeout.
func (s *SheetService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("sheet server shutdown", zap.Error(err))
	}
}

// Close releases the port of a service that was never started.
func (s *SheetService) Close() error { return s.listener.Close() }

// ServeHTTP answers GET and HEAD with the document on every path.
func (s *SheetService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	s.mu.RLock()
	doc := s.doc
	s.mu.RUnlock()
	if doc == nil {
		http.Error(w, "character sheet not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		if _, err := w.Write(doc); err != nil {
			s.logger.Debug("writing sheet", zap.Error(err))
		}
	}
	s.logger.Debug("sheet request", zap.String("method", r.Method), zap.String("remote", r.RemoteAddr))
}
