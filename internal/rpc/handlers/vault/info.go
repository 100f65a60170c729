package vault

import (
	"context"

	"vaultd/internal/rpc/handlers"
)

// InfoHandler handles the "bank_info" RPC method.
type InfoHandler struct{}

func (h *InfoHandler) Name() string { return "bank_info" }

// Handle reports the bank's configuration and lifetime counters. The total
// pool value is included when the feeds are healthy and omitted otherwise,
// so a stale oracle does not break the info surface.
func (h *InfoHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	info := services.Bank.Summary()

	result := map[string]interface{}{
		"native_asset":       string(info.NativeAsset),
		"cap":                info.Cap.String(),
		"withdrawal_ceiling": info.WithdrawalCeiling.String(),
		"native_cap_policy":  string(info.NativeCapPolicy),
		"deposits":           info.Deposits,
		"withdrawals":        info.Withdrawals,
		"catalog_size":       info.CatalogSize,
	}

	if total, err := services.Bank.TotalPoolValue(ctx); err == nil {
		result["total_pool_value"] = total.String()
	} else {
		result["valuation_error"] = err.Error()
	}
	return result, nil
}

func (h *InfoHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&InfoHandler{})
}
