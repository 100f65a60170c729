package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"vaultd/internal/config"
	"vaultd/internal/core/bank"
	"vaultd/internal/core/feed"
	"vaultd/internal/core/transfer"
	"vaultd/internal/rpc/handlers"
	_ "vaultd/internal/rpc/handlers/server"
	_ "vaultd/internal/rpc/handlers/vault"
	"vaultd/internal/storage/ledgerdb"
)

const adminToken = "test-admin-token"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	src := feed.NewStatic()
	src.Set("feed:eth-usd", new(big.Int).Mul(big.NewInt(2500), exp10(8)), 8, 0)
	src.Set("feed:usdc-usd", exp10(8), 8, 0)

	recorder, err := bank.NewRecorder(64)
	require.NoError(t, err)
	catalog := bank.NewCatalog(recorder)

	ledger, err := bank.OpenLedger(context.Background(), ledgerdb.NewMemory())
	require.NoError(t, err)
	pool := transfer.NewPool("ETH")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logger.WithField("component", "rpc")

	params := bank.Params{
		Cap:               big.NewInt(1_000_000),
		WithdrawalCeiling: big.NewInt(1000),
		NativeAsset:       "ETH",
		NativeFeed:        "feed:eth-usd",
		NativeDecimals:    18,
		NativeCapPolicy:   bank.CapPolicyValued,
	}
	b := bank.New(params, catalog, bank.NewOracle(src, time.Hour, 0), ledger, pool, pool, recorder, log)

	services := &handlers.Services{
		Bank:     b,
		Recorder: recorder,
		Started:  time.Now(),
		Version:  "test",
	}
	cfg := config.ServerConfig{
		Host: "127.0.0.1", Port: 0, AdminToken: adminToken,
		ReadTimeout: time.Second, WriteTimeout: time.Second,
	}
	srv := NewServer(cfg, handlers.DefaultRegistry, services, log)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func exp10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func call(t *testing.T, ts *httptest.Server, method string, params map[string]interface{}, headers map[string]string) Response {
	t.Helper()

	body, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func result(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected rpc error: %+v", resp.Error)
	m, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	return m
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	m := result(t, call(t, ts, "ping", nil, nil))
	require.Equal(t, "success", m["status"])
}

func TestDepositAndBalance(t *testing.T) {
	ts := newTestServer(t)

	amount := "400000000000000000" // 0.4 ETH
	m := result(t, call(t, ts, "deposit", map[string]interface{}{
		"user": "alice", "asset": "ETH", "amount": amount, "sent": amount,
	}, nil))
	require.Equal(t, "success", m["status"])
	require.Equal(t, amount, m["balance"])

	m = result(t, call(t, ts, "account_balance", map[string]interface{}{
		"user": "alice", "asset": "ETH",
	}, nil))
	require.Equal(t, amount, m["balance"])
}

func TestWithdrawOverCeilingSurfacesDomainError(t *testing.T) {
	ts := newTestServer(t)

	amount := "1000000000000000000" // 1 ETH, value 2500 > ceiling 1000
	result(t, call(t, ts, "deposit", map[string]interface{}{
		"user": "alice", "asset": "ETH", "amount": amount, "sent": amount,
	}, nil))

	resp := call(t, ts, "withdraw", map[string]interface{}{
		"user": "alice", "asset": "ETH", "amount": amount,
	}, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeServerError, resp.Error.Code)
	require.Contains(t, resp.Error.Message, bank.ErrWithdrawalLimitExceeded.Error())
}

func TestInvalidParamsCode(t *testing.T) {
	ts := newTestServer(t)
	resp := call(t, ts, "deposit", map[string]interface{}{"user": "alice"}, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestMethodNotFound(t *testing.T) {
	ts := newTestServer(t)
	resp := call(t, ts, "shutdown", nil, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestAdminMethodsRequireToken(t *testing.T) {
	ts := newTestServer(t)
	params := map[string]interface{}{
		"id": "USDC", "feed": "feed:usdc-usd", "decimals": float64(6),
	}

	resp := call(t, ts, "asset_register", params, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	resp = call(t, ts, "asset_register", params, map[string]string{"X-Admin-Token": "wrong"})
	require.NotNil(t, resp.Error)

	m := result(t, call(t, ts, "asset_register", params, map[string]string{"X-Admin-Token": adminToken}))
	require.Equal(t, "success", m["status"])

	m = result(t, call(t, ts, "asset_list", nil, nil))
	assets, ok := m["assets"].([]interface{})
	require.True(t, ok)
	require.Len(t, assets, 1)
}

func TestBankInfoAndActivity(t *testing.T) {
	ts := newTestServer(t)

	amount := "400000000000000000"
	result(t, call(t, ts, "deposit", map[string]interface{}{
		"user": "alice", "asset": "ETH", "amount": amount, "sent": amount,
	}, nil))

	m := result(t, call(t, ts, "bank_info", nil, nil))
	require.Equal(t, "ETH", m["native_asset"])
	require.Equal(t, float64(1), m["deposits"])
	require.Equal(t, "1000", m["total_pool_value"])

	m = result(t, call(t, ts, "bank_activity", map[string]interface{}{"limit": float64(10)}, nil))
	events, ok := m["events"].([]interface{})
	require.True(t, ok)
	require.Len(t, events, 1)
}

func TestActivityJournalSourceWithoutJournal(t *testing.T) {
	// The test services run without a journal store, matching the "none"
	// driver. The journal source must fail cleanly, not fall back to the
	// recorder.
	ts := newTestServer(t)

	resp := call(t, ts, "bank_activity", map[string]interface{}{"source": "journal"}, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeServerError, resp.Error.Code)
	require.Contains(t, resp.Error.Message, handlers.ErrJournalDisabled.Error())
}

func TestServerInfo(t *testing.T) {
	ts := newTestServer(t)
	m := result(t, call(t, ts, "server_info", nil, nil))
	require.Equal(t, "test", m["version"])
	methods, ok := m["methods"].([]interface{})
	require.True(t, ok)
	require.Contains(t, methods, "deposit")
	require.Contains(t, methods, "withdraw")
}

func TestRejectsNonPost(t *testing.T) {
	ts := newTestServer(t)
	resp, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
