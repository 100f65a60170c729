package vault

import (
	"context"

	"vaultd/internal/core/bank"
	"vaultd/internal/rpc/handlers"
)

// AssetListHandler handles the "asset_list" RPC method.
type AssetListHandler struct{}

func (h *AssetListHandler) Name() string { return "asset_list" }

func (h *AssetListHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	assets := make([]map[string]interface{}, 0)
	for _, id := range services.Bank.Assets() {
		info, err := services.Bank.LookupAsset(id)
		if err != nil {
			return nil, err
		}
		assets = append(assets, map[string]interface{}{
			"id":       string(id),
			"feed":     info.Feed,
			"decimals": info.Decimals,
		})
	}
	return map[string]interface{}{"assets": assets}, nil
}

func (h *AssetListHandler) RequiresAdmin() bool { return false }

// AssetRegisterHandler handles the admin-only "asset_register" RPC method.
type AssetRegisterHandler struct{}

func (h *AssetRegisterHandler) Name() string { return "asset_register" }

func (h *AssetRegisterHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	id, err := handlers.StringParam(params, "id")
	if err != nil {
		return nil, err
	}
	feedRef, err := handlers.StringParam(params, "feed")
	if err != nil {
		return nil, err
	}
	decimals, err := handlers.Uint8Param(params, "decimals")
	if err != nil {
		return nil, err
	}

	if err := services.Bank.RegisterAsset(bank.AssetID(id), feedRef, decimals); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status": "success",
		"id":     id,
	}, nil
}

func (h *AssetRegisterHandler) RequiresAdmin() bool { return true }

// AssetUpdateFeedHandler handles the admin-only "asset_update_feed" method.
type AssetUpdateFeedHandler struct{}

func (h *AssetUpdateFeedHandler) Name() string { return "asset_update_feed" }

func (h *AssetUpdateFeedHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	id, err := handlers.StringParam(params, "id")
	if err != nil {
		return nil, err
	}
	feedRef, err := handlers.StringParam(params, "feed")
	if err != nil {
		return nil, err
	}

	if err := services.Bank.UpdateAssetFeed(bank.AssetID(id), feedRef); err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status": "success",
		"id":     id,
		"feed":   feedRef,
	}, nil
}

func (h *AssetUpdateFeedHandler) RequiresAdmin() bool { return true }

func init() {
	handlers.MustRegister(&AssetListHandler{})
	handlers.MustRegister(&AssetRegisterHandler{})
	handlers.MustRegister(&AssetUpdateFeedHandler{})
}
