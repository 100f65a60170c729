package vault

import (
	"context"

	"vaultd/internal/core/bank"
	"vaultd/internal/rpc/handlers"
)

// ActivityHandler handles the "bank_activity" RPC method. It serves the
// in-memory tail by default and the durable journal when "source" is
// "journal".
type ActivityHandler struct{}

func (h *ActivityHandler) Name() string { return "bank_activity" }

func (h *ActivityHandler) Handle(ctx context.Context, params map[string]interface{}, services *handlers.Services) (interface{}, error) {
	limit, err := handlers.IntParam(params, "limit", 50)
	if err != nil {
		return nil, err
	}
	source, err := handlers.OptionalStringParam(params, "source")
	if err != nil {
		return nil, err
	}

	switch source {
	case "", "recent":
		return h.recent(services, limit)
	case "journal":
		return h.journal(ctx, services, limit)
	default:
		return nil, handlers.ErrInvalidParams
	}
}

func (h *ActivityHandler) recent(services *handlers.Services, limit int) (interface{}, error) {
	events := make([]map[string]interface{}, 0)
	for _, ev := range services.Recorder.Recent(limit) {
		events = append(events, describeEvent(ev))
	}
	return map[string]interface{}{"source": "recent", "events": events}, nil
}

func (h *ActivityHandler) journal(ctx context.Context, services *handlers.Services, limit int) (interface{}, error) {
	if services.Journal == nil {
		return nil, handlers.ErrJournalDisabled
	}
	entries, err := services.Journal.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	events := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		events = append(events, map[string]interface{}{
			"id":      entry.ID.String(),
			"kind":    entry.Kind,
			"user":    entry.User,
			"asset":   entry.Asset,
			"amount":  entry.Amount,
			"balance": entry.Balance,
			"at":      entry.At,
		})
	}
	return map[string]interface{}{"source": "journal", "events": events}, nil
}

func describeEvent(ev bank.Event) map[string]interface{} {
	out := map[string]interface{}{"kind": ev.Kind()}
	switch e := ev.(type) {
	case bank.DepositEvent:
		out["user"] = string(e.User)
		out["asset"] = string(e.Asset)
		out["amount"] = e.Amount.String()
		out["balance"] = e.NewBalance.String()
		out["at"] = e.At
	case bank.WithdrawalEvent:
		out["user"] = string(e.User)
		out["asset"] = string(e.Asset)
		out["amount"] = e.Amount.String()
		out["balance"] = e.NewBalance.String()
		out["at"] = e.At
	case bank.TokenSupportedEvent:
		out["asset"] = string(e.Asset)
		out["feed"] = e.Feed
		out["decimals"] = e.Decimals
		out["at"] = e.At
	case bank.FeedUpdatedEvent:
		out["asset"] = string(e.Asset)
		out["feed"] = e.Feed
		out["at"] = e.At
	}
	return out
}

func (h *ActivityHandler) RequiresAdmin() bool { return false }

func init() {
	handlers.MustRegister(&ActivityHandler{})
}
