package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	name  string
	admin bool
}

func (h *fakeHandler) Name() string { return h.name }
func (h *fakeHandler) Handle(ctx context.Context, params map[string]interface{}, services *Services) (interface{}, error) {
	return h.name, nil
}
func (h *fakeHandler) RequiresAdmin() bool { return h.admin }

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeHandler{name: "ping"}))

	require.True(t, r.Has("ping"))
	require.NotNil(t, r.Get("ping"))
	require.Nil(t, r.Get("absent"))
	require.Equal(t, 1, r.Count())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeHandler{name: "ping"}))
	require.Error(t, r.Register(&fakeHandler{name: "ping"}))
	require.Panics(t, func() { r.MustRegister(&fakeHandler{name: "ping"}) })
}

func TestRegistryMethodsSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeHandler{name: "withdraw"}))
	require.NoError(t, r.Register(&fakeHandler{name: "deposit"}))
	require.NoError(t, r.Register(&fakeHandler{name: "asset_register", admin: true}))

	require.Equal(t, []string{"asset_register", "deposit", "withdraw"}, r.Methods())
	require.Equal(t, []string{"asset_register"}, r.AdminMethods())
}

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"user":     "alice",
		"amount":   "400000000000000000",
		"limit":    float64(25),
		"decimals": float64(6),
		"bad":      float64(1.5),
	}

	user, err := StringParam(params, "user")
	require.NoError(t, err)
	require.Equal(t, "alice", user)

	_, err = StringParam(params, "missing")
	require.ErrorIs(t, err, ErrInvalidParams)

	amount, err := AmountParam(params, "amount")
	require.NoError(t, err)
	require.Equal(t, "400000000000000000", amount.String())

	params["amount"] = "0x1f"
	_, err = AmountParam(params, "amount")
	require.ErrorIs(t, err, ErrInvalidParams)

	limit, err := IntParam(params, "limit", 50)
	require.NoError(t, err)
	require.Equal(t, 25, limit)

	limit, err = IntParam(params, "absent", 50)
	require.NoError(t, err)
	require.Equal(t, 50, limit)

	_, err = IntParam(params, "bad", 0)
	require.ErrorIs(t, err, ErrInvalidParams)

	decimals, err := Uint8Param(params, "decimals")
	require.NoError(t, err)
	require.Equal(t, uint8(6), decimals)

	_, err = Uint8Param(params, "missing")
	require.ErrorIs(t, err, ErrInvalidParams)

	params["decimals"] = float64(300)
	_, err = Uint8Param(params, "decimals")
	require.ErrorIs(t, err, ErrInvalidParams)

	s, err := OptionalStringParam(params, "missing")
	require.NoError(t, err)
	require.Empty(t, s)
}
