package vault

import (
	"context"

	"vaultd/internal/core/bank"
	"vaultd/internal/rpc/handlers"
)

// WithdrawHandler handles the "withdraw" RPC method.
type WithdrawHandler struct{}

func (h *WithdrawHandler) Name() string { return "withdraw" }

func (h *WithdrawHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	user, err := handlers.StringParam(params, "user")
	if err != nil {
		return nil, err
	}
	asset, err := handlers.StringParam(params, "asset")
	if err != nil {
		return nil, err
	}
	amount, err := handlers.AmountParam(params, "amount")
	if err != nil {
		return nil, err
	}

	if err := services.Bank.Withdraw(ctx, bank.UserID(user), bank.AssetID(asset), amount); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":  "success",
		"user":    user,
		"asset":   asset,
		"amount":  amount.String(),
		"balance": services.Bank.BalanceOf(bank.UserID(user), bank.AssetID(asset)).String(),
	}, nil
}

func (h *WithdrawHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&WithdrawHandler{})
}
