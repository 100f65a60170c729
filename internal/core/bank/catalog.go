package bank

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// UserID identifies an account holder. Opaque to the bank.
type UserID string

// AssetID identifies a fungible asset by symbol. The native asset is never
// stored in the catalog; it has a fixed feed reference configured at
// construction.
type AssetID string

// AssetInfo describes a cataloged asset. A cataloged asset is always
// allowed; there is no supported-but-disabled state.
type AssetInfo struct {
	Feed     string
	Decimals uint8
}

// Catalog is the registry of supported secondary assets. Mutations are
// expected from a single trusted admin caller; authorization happens at the
// transport layer.
type Catalog struct {
	mu     sync.RWMutex
	assets map[AssetID]AssetInfo
	sink   Sink
}

// NewCatalog creates an empty catalog. Catalog events go to sink; a nil sink
// disables them.
func NewCatalog(sink Sink) *Catalog {
	return &Catalog{
		assets: make(map[AssetID]AssetInfo),
		sink:   sink,
	}
}

// Register adds an asset with its feed reference and native decimal
// precision. Entries are never removed once registered.
func (c *Catalog) Register(id AssetID, feedRef string, decimals uint8) error {
	if id == "" || feedRef == "" || strings.ContainsRune(string(id), '/') {
		return ErrInvalidReference
	}

	c.mu.Lock()
	if _, exists := c.assets[id]; exists {
		c.mu.Unlock()
		return ErrDuplicateAsset
	}
	c.assets[id] = AssetInfo{Feed: feedRef, Decimals: decimals}
	c.mu.Unlock()

	c.publish(TokenSupportedEvent{Asset: id, Feed: feedRef, Decimals: decimals, At: time.Now()})
	return nil
}

// Lookup returns the descriptor for a cataloged asset.
func (c *Catalog) Lookup(id AssetID) (AssetInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, exists := c.assets[id]
	if !exists {
		return AssetInfo{}, ErrUnsupportedAsset
	}
	return info, nil
}

// UpdateFeed replaces the feed reference of a cataloged asset.
func (c *Catalog) UpdateFeed(id AssetID, newRef string) error {
	if newRef == "" {
		return ErrInvalidReference
	}

	c.mu.Lock()
	info, exists := c.assets[id]
	if !exists {
		c.mu.Unlock()
		return ErrUnsupportedAsset
	}
	info.Feed = newRef
	c.assets[id] = info
	c.mu.Unlock()

	c.publish(FeedUpdatedEvent{Asset: id, Feed: newRef, At: time.Now()})
	return nil
}

// Assets returns all cataloged asset identifiers in stable order.
func (c *Catalog) Assets() []AssetID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]AssetID, 0, len(c.assets))
	for id := range c.assets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of cataloged assets.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

func (c *Catalog) publish(ev Event) {
	if c.sink != nil {
		c.sink.Publish(ev)
	}
}
