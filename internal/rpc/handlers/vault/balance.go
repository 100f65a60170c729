package vault

import (
	"context"

	"vaultd/internal/core/bank"
	"vaultd/internal/rpc/handlers"
)

// BalanceHandler handles the "account_balance" RPC method.
type BalanceHandler struct{}

func (h *BalanceHandler) Name() string { return "account_balance" }

func (h *BalanceHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	user, err := handlers.StringParam(params, "user")
	if err != nil {
		return nil, err
	}
	asset, err := handlers.StringParam(params, "asset")
	if err != nil {
		return nil, err
	}

	balance := services.Bank.BalanceOf(bank.UserID(user), bank.AssetID(asset))
	return map[string]interface{}{
		"user":    user,
		"asset":   asset,
		"balance": balance.String(),
	}, nil
}

func (h *BalanceHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&BalanceHandler{})
}
