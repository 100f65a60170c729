// Package vault provides the custody RPC method handlers.
package vault

import (
	"context"
	"math/big"

	"vaultd/internal/core/bank"
	"vaultd/internal/rpc/handlers"
)

// DepositHandler handles the "deposit" RPC method.
type DepositHandler struct{}

func (h *DepositHandler) Name() string { return "deposit" }

// Handle credits an asset to a user. Native deposits must carry a "sent"
// value equal to the amount; it stands in for the value attached to the call.
func (h *DepositHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
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

	// Native deposits carry the transferred value separately; the engine
	// rejects a mismatch. Cataloged-asset deposits ignore it.
	var sent *big.Int
	if _, ok := params["sent"]; ok {
		if sent, err = handlers.AmountParam(params, "sent"); err != nil {
			return nil, err
		}
	}

	if err := services.Bank.Deposit(ctx, bank.UserID(user), bank.AssetID(asset), amount, sent); err != nil {
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

func (h *DepositHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&DepositHandler{})
}
