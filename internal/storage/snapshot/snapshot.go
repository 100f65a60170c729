// Package snapshot exports and restores point-in-time images of the bank
// state as compressed CBOR documents. Snapshots are an operator tool for
// audits and cold backups; the ledger database remains the source of truth.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ugorji/go/codec"

	"vaultd/internal/core/bank"
)

// magic identifies a snapshot stream.
var magic = [4]byte{'V', 'S', 'N', 'P'}

const formatVersion = 1

var (
	ErrBadMagic          = errors.New("snapshot: bad magic")
	ErrUnsupportedFormat = errors.New("snapshot: unsupported format version")
)

var cborHandle = new(codec.CborHandle)

// AssetRecord is one cataloged asset in a snapshot.
type AssetRecord struct {
	ID       string `codec:"id"`
	Feed     string `codec:"feed"`
	Decimals uint8  `codec:"decimals"`
}

// BalanceRecord is one (user, asset) balance in a snapshot. Amounts are
// decimal strings.
type BalanceRecord struct {
	User   string `codec:"user"`
	Asset  string `codec:"asset"`
	Amount string `codec:"amount"`
}

// Document is a complete exported state image.
type Document struct {
	TakenAt     time.Time       `codec:"taken_at"`
	NativeAsset string          `codec:"native_asset"`
	Deposits    uint64          `codec:"deposits"`
	Withdrawals uint64          `codec:"withdrawals"`
	Assets      []AssetRecord   `codec:"assets"`
	Balances    []BalanceRecord `codec:"balances"`
}

// Take builds a document from the bank's committed state.
func Take(b *bank.Bank) (Document, error) {
	info := b.Summary()
	doc := Document{
		TakenAt:     time.Now().UTC(),
		NativeAsset: string(info.NativeAsset),
		Deposits:    info.Deposits,
		Withdrawals: info.Withdrawals,
	}

	for _, id := range b.Assets() {
		assetInfo, err := b.LookupAsset(id)
		if err != nil {
			return Document{}, fmt.Errorf("reading catalog entry %s: %w", id, err)
		}
		doc.Assets = append(doc.Assets, AssetRecord{
			ID:       string(id),
			Feed:     assetInfo.Feed,
			Decimals: assetInfo.Decimals,
		})
	}

	for _, entry := range b.Entries() {
		doc.Balances = append(doc.Balances, BalanceRecord{
			User:   string(entry.User),
			Asset:  string(entry.Asset),
			Amount: entry.Amount.String(),
		})
	}
	return doc, nil
}

// Write encodes doc and writes it to w using compressor. Incompressible
// payloads silently fall back to uncompressed storage.
func Write(w io.Writer, doc Document, compressor Compressor) error {
	var payload []byte
	if err := codec.NewEncoderBytes(&payload, cborHandle).Encode(doc); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	compressed, err := compressor.Compress(payload)
	name := compressor.Name()
	if errors.Is(err, errIncompressible) {
		compressed, err = (&NoCompressor{}).Compress(payload)
		name = "none"
	}
	if err != nil {
		return fmt.Errorf("compressing snapshot: %w", err)
	}

	if _, err := w.Write(magic[:]); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}
	header := []byte{formatVersion, byte(len(name))}
	header = append(header, name...)
	header = binary.BigEndian.AppendUint64(header, uint64(len(payload)))
	header = binary.BigEndian.AppendUint64(header, uint64(len(compressed)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("writing snapshot header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("writing snapshot payload: %w", err)
	}
	return nil
}

// Read decodes a snapshot document from r.
func Read(r io.Reader) (Document, error) {
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return Document{}, fmt.Errorf("reading snapshot magic: %w", err)
	}
	if gotMagic != magic {
		return Document{}, ErrBadMagic
	}

	var fixed [2]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Document{}, fmt.Errorf("reading snapshot header: %w", err)
	}
	if fixed[0] != formatVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, fixed[0])
	}

	name := make([]byte, fixed[1])
	if _, err := io.ReadFull(r, name); err != nil {
		return Document{}, fmt.Errorf("reading compressor name: %w", err)
	}
	var sizes [16]byte
	if _, err := io.ReadFull(r, sizes[:]); err != nil {
		return Document{}, fmt.Errorf("reading snapshot sizes: %w", err)
	}
	uncompressedSize := binary.BigEndian.Uint64(sizes[:8])
	compressedSize := binary.BigEndian.Uint64(sizes[8:])

	compressor, err := Get(string(name))
	if err != nil {
		return Document{}, err
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return Document{}, fmt.Errorf("reading snapshot payload: %w", err)
	}
	payload, err := compressor.Decompress(compressed, int(uncompressedSize))
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if err := codec.NewDecoderBytes(payload, cborHandle).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return doc, nil
}
