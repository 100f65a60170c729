// Package server provides server-related RPC method handlers.
package server

import (
	"context"

	"vaultd/internal/rpc/handlers"
)

// PingHandler handles the "ping" RPC method.
type PingHandler struct{}

func (h *PingHandler) Name() string { return "ping" }

func (h *PingHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	return map[string]interface{}{
		"status": "success",
	}, nil
}

func (h *PingHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&PingHandler{})
}
