// Package handlers provides the RPC method handler interface and registry.
package handlers

import (
	"context"
	"time"

	"vaultd/internal/core/bank"
	"vaultd/internal/storage/journal"
)

// Handler defines the interface for RPC method handlers.
type Handler interface {
	// Name returns the RPC method name.
	Name() string

	// Handle processes the RPC request and returns a response.
	Handle(ctx context.Context, params map[string]interface{}, services *Services) (interface{}, error)

	// RequiresAdmin returns true if the method requires admin privileges.
	RequiresAdmin() bool
}

// Services provides access to all services needed by RPC handlers.
type Services struct {
	// Bank is the accounting engine.
	Bank *bank.Bank

	// Journal is the durable operation journal; may be nil when journaling
	// is disabled.
	Journal journal.Store

	// Recorder holds the in-memory recent-activity tail.
	Recorder *bank.Recorder

	// Started is the process start time.
	Started time.Time

	// Version is the build version string.
	Version string
}
