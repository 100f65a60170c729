package server

import (
	"context"
	"time"

	"vaultd/internal/rpc/handlers"
)

// InfoHandler handles the "server_info" RPC method.
type InfoHandler struct{}

func (h *InfoHandler) Name() string { return "server_info" }

func (h *InfoHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	result := map[string]interface{}{
		"version":        services.Version,
		"uptime_seconds": int64(time.Since(services.Started).Seconds()),
		"methods":        handlers.DefaultRegistry.Methods(),
	}
	if services.Journal != nil {
		if count, err := services.Journal.Count(ctx); err == nil {
			result["journal_entries"] = count
		}
	}
	return result, nil
}

func (h *InfoHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&InfoHandler{})
}
