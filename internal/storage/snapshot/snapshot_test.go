package snapshot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testDocument() Document {
	return Document{
		TakenAt:     time.Unix(1_700_000_000, 0).UTC(),
		NativeAsset: "ETH",
		Deposits:    12,
		Withdrawals: 7,
		Assets: []AssetRecord{
			{ID: "USDC", Feed: "feed:usdc-usd", Decimals: 6},
			{ID: "WBTC", Feed: "feed:wbtc-usd", Decimals: 8},
		},
		Balances: []BalanceRecord{
			{User: "alice", Asset: "ETH", Amount: "400000000000000000"},
			{User: "bob", Asset: "USDC", Amount: "150000000"},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, name := range []string{"none", "lz4"} {
		t.Run(name, func(t *testing.T) {
			compressor, err := Get(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, testDocument(), compressor))

			got, err := Read(&buf)
			require.NoError(t, err)
			require.Equal(t, testDocument(), got)
		})
	}
}

func TestSnapshotRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("XXXX garbage")))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestSnapshotRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testDocument(), &NoCompressor{}))

	raw := buf.Bytes()
	raw[4] = 99 // version byte follows the 4-byte magic
	_, err := Read(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSnapshotTruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testDocument(), &NoCompressor{}))

	raw := buf.Bytes()
	_, err := Read(bytes.NewReader(raw[:len(raw)-10]))
	require.Error(t, err)
}

func TestGetUnknownCompressor(t *testing.T) {
	_, err := Get("zstd")
	require.Error(t, err)
}

func TestLZ4IncompressibleFallsBackToNone(t *testing.T) {
	// A tiny document compresses poorly; the writer must still produce a
	// readable stream.
	doc := Document{NativeAsset: "E", TakenAt: time.Unix(0, 0).UTC()}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, doc, &LZ4Compressor{}))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, doc, got)
}
