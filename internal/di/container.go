// Package di provides dependency injection infrastructure for the vaultd
// daemon.
package di

import (
	"errors"
	"sync"
)

// Container is the dependency injection container. It manages service
// registration and resolution.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
	builders map[string]Builder
}

// Builder is a function that creates a service instance.
type Builder func(c *Container) (interface{}, error)

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it on first use.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	service, exists := c.services[name]
	c.mu.RUnlock()

	if exists {
		return service, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Check again in case it was built while waiting for the lock.
	if service, exists := c.services[name]; exists {
		return service, nil
	}

	builder, hasBuilder := c.builders[name]
	if !hasBuilder {
		return nil, errors.New("service not found: " + name)
	}

	service, err := builder(c)
	if err != nil {
		return nil, err
	}

	c.services[name] = service
	return service, nil
}

// MustGet retrieves a service or panics if not found.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, exists := c.services[name]; exists {
		return true
	}
	_, exists := c.builders[name]
	return exists
}

// Service names constants for type-safe access.
const (
	ServiceConfig     = "config"
	ServiceLogger     = "logger"
	ServiceLedgerDB   = "ledgerdb"
	ServiceLedger     = "ledger"
	ServiceFeedSource = "feeds.source"
	ServiceJournal    = "journal"
	ServiceRecorder   = "recorder"
	ServiceCatalog    = "catalog"
	ServicePool       = "pool"
	ServiceBank       = "bank"
	ServiceRPCServer  = "rpc.server"
)
