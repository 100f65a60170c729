// Package jsonrpc serves the registered RPC methods over HTTP as JSON-RPC
// 2.0. Admin methods additionally require the configured token in the
// X-Admin-Token header.
package jsonrpc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"vaultd/internal/config"
	"vaultd/internal/rpc/handlers"
)

// Server is the JSON-RPC HTTP server.
type Server struct {
	registry   *handlers.Registry
	services   *handlers.Services
	adminToken string
	log        *logrus.Entry

	httpServer *http.Server
}

// NewServer builds a server from the config's server section.
func NewServer(cfg config.ServerConfig, registry *handlers.Registry, services *handlers.Services, log *logrus.Entry) *Server {
	s := &Server{
		registry:   registry,
		services:   services,
		adminToken: cfg.AdminToken,
		log:        log,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("rpc server listening")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, nil, codeParseError, "parse error", nil)
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != "2.0" {
		s.writeError(w, req.ID, codeInvalidRequest, "unsupported jsonrpc version", nil)
		return
	}

	handler := s.registry.Get(req.Method)
	if handler == nil {
		s.writeError(w, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}

	if handler.RequiresAdmin() && !s.authorized(r) {
		s.log.WithFields(logrus.Fields{
			"method": req.Method,
			"remote": r.RemoteAddr,
		}).Warn("unauthorized admin call rejected")
		s.writeError(w, req.ID, codeUnauthorized, "admin authorization required", nil)
		return
	}

	start := time.Now()
	result, err := handler.Handle(r.Context(), req.Params, s.services)
	if err != nil {
		code := codeServerError
		if errors.Is(err, handlers.ErrInvalidParams) {
			code = codeInvalidParams
		}
		s.log.WithError(err).WithField("method", req.Method).Debug("rpc call failed")
		s.writeError(w, req.ID, code, err.Error(), nil)
		return
	}

	s.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"duration": time.Since(start).String(),
	}).Debug("rpc call served")
	s.writeResponse(w, Response{JSONRPC: "2.0", Result: result, ID: req.ID})
}

// authorized checks the admin token. An unset token disables all admin
// methods rather than leaving them open.
func (s *Server) authorized(r *http.Request) bool {
	if s.adminToken == "" {
		return false
	}
	got := r.Header.Get("X-Admin-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.adminToken)) == 1
}

func (s *Server) writeError(w http.ResponseWriter, id json.RawMessage, code int, message string, data interface{}) {
	s.writeResponse(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message, Data: data},
		ID:      id,
	})
}

func (s *Server) writeResponse(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.WithError(err).Error("writing rpc response failed")
	}
}
