package di

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"vaultd/internal/config"
	"vaultd/internal/core/bank"
	"vaultd/internal/core/feed"
	"vaultd/internal/core/transfer"
	"vaultd/internal/logging"
	"vaultd/internal/rpc/handlers"
	_ "vaultd/internal/rpc/handlers/server"
	_ "vaultd/internal/rpc/handlers/vault"
	"vaultd/internal/server/api/jsonrpc"
	"vaultd/internal/storage/journal"
	journalpostgres "vaultd/internal/storage/journal/postgres"
	journalsqlite "vaultd/internal/storage/journal/sqlite"
	"vaultd/internal/storage/ledgerdb"
	ledgerbbolt "vaultd/internal/storage/ledgerdb/bbolt"
	ledgerleveldb "vaultd/internal/storage/ledgerdb/leveldb"
	ledgerpebble "vaultd/internal/storage/ledgerdb/pebble"
)

// Provider configures and registers services in the container.
type Provider struct {
	container *Container
	config    *config.Config
	version   string
}

// NewProvider creates a new service provider.
func NewProvider(container *Container, cfg *config.Config, version string) *Provider {
	return &Provider{
		container: container,
		config:    cfg,
		version:   version,
	}
}

// RegisterAll registers all service builders.
func (p *Provider) RegisterAll() error {
	p.container.Register(ServiceConfig, p.config)

	p.registerInfraBuilders()
	p.registerStorageBuilders()
	p.registerBankBuilders()
	p.registerRPCBuilders()
	return nil
}

func (p *Provider) registerInfraBuilders() {
	p.container.RegisterBuilder(ServiceLogger, func(c *Container) (interface{}, error) {
		return logging.New(p.config.Log)
	})

	p.container.RegisterBuilder(ServiceFeedSource, func(c *Container) (interface{}, error) {
		logger, err := p.Logger()
		if err != nil {
			return nil, err
		}
		switch p.config.Feeds.Source {
		case "static":
			src := feed.NewStatic()
			for ref, round := range p.config.Feeds.Static {
				answer, ok := new(big.Int).SetString(round.Answer, 10)
				if !ok {
					return nil, fmt.Errorf("feeds.static[%s].answer %q is not a decimal integer", ref, round.Answer)
				}
				src.Set(ref, answer, round.Decimals, 0)
			}
			return src, nil
		case "websocket":
			return feed.NewSubscriber(p.config.Feeds.URL, logger.WithField("component", "feeds")), nil
		default:
			return nil, fmt.Errorf("unknown feeds.source %q", p.config.Feeds.Source)
		}
	})
}

func (p *Provider) registerStorageBuilders() {
	p.container.RegisterBuilder(ServiceLedgerDB, func(c *Container) (interface{}, error) {
		switch p.config.Database.Backend {
		case "pebble":
			return ledgerpebble.Open(p.config.Database.Path)
		case "leveldb":
			return ledgerleveldb.Open(p.config.Database.Path)
		case "bbolt":
			return ledgerbbolt.Open(p.config.Database.Path)
		case "memory":
			return ledgerdb.NewMemory(), nil
		default:
			return nil, fmt.Errorf("%w: %q", ledgerdb.ErrUnknownBackend, p.config.Database.Backend)
		}
	})

	p.container.RegisterBuilder(ServiceLedger, func(c *Container) (interface{}, error) {
		db, err := c.Get(ServiceLedgerDB)
		if err != nil {
			return nil, err
		}
		return bank.OpenLedger(context.Background(), db.(ledgerdb.DB))
	})

	p.container.RegisterBuilder(ServiceJournal, func(c *Container) (interface{}, error) {
		ctx := context.Background()
		switch p.config.Journal.Driver {
		case "sqlite":
			return journalsqlite.Open(ctx, p.config.Journal)
		case "postgres":
			return journalpostgres.Open(ctx, p.config.Journal)
		default:
			return nil, fmt.Errorf("%w: %q", journal.ErrUnknownDriver, p.config.Journal.Driver)
		}
	})
}

func (p *Provider) registerBankBuilders() {
	p.container.RegisterBuilder(ServiceRecorder, func(c *Container) (interface{}, error) {
		return bank.NewRecorder(p.config.Bank.ActivityLimit)
	})

	p.container.RegisterBuilder(ServiceCatalog, func(c *Container) (interface{}, error) {
		sink, err := p.sink()
		if err != nil {
			return nil, err
		}
		catalog := bank.NewCatalog(sink)
		for _, asset := range p.config.Bank.Assets {
			if err := catalog.Register(bank.AssetID(asset.ID), asset.Feed, asset.Decimals); err != nil {
				return nil, fmt.Errorf("registering configured asset %s: %w", asset.ID, err)
			}
		}
		return catalog, nil
	})

	p.container.RegisterBuilder(ServicePool, func(c *Container) (interface{}, error) {
		return transfer.NewPool(p.config.Bank.NativeAsset), nil
	})

	p.container.RegisterBuilder(ServiceBank, func(c *Container) (interface{}, error) {
		params, err := p.config.Bank.Params()
		if err != nil {
			return nil, err
		}
		catalog, err := c.Get(ServiceCatalog)
		if err != nil {
			return nil, err
		}
		source, err := c.Get(ServiceFeedSource)
		if err != nil {
			return nil, err
		}
		ledger, err := c.Get(ServiceLedger)
		if err != nil {
			return nil, err
		}
		pool, err := c.Get(ServicePool)
		if err != nil {
			return nil, err
		}
		sink, err := p.sink()
		if err != nil {
			return nil, err
		}
		logger, err := p.Logger()
		if err != nil {
			return nil, err
		}

		oracle := bank.NewOracle(source.(feed.Source), p.config.Bank.OracleHeartbeat, p.config.Bank.ReferenceDecimals)
		return bank.New(
			params,
			catalog.(*bank.Catalog),
			oracle,
			ledger.(*bank.Ledger),
			pool.(*transfer.Pool),
			pool.(*transfer.Pool),
			sink,
			logger.WithField("component", "bank"),
		), nil
	})
}

func (p *Provider) registerRPCBuilders() {
	p.container.RegisterBuilder(ServiceRPCServer, func(c *Container) (interface{}, error) {
		b, err := p.Bank()
		if err != nil {
			return nil, err
		}
		recorder, err := c.Get(ServiceRecorder)
		if err != nil {
			return nil, err
		}
		store, err := p.Journal()
		if err != nil {
			return nil, err
		}
		logger, err := p.Logger()
		if err != nil {
			return nil, err
		}

		services := &handlers.Services{
			Bank:     b,
			Journal:  store,
			Recorder: recorder.(*bank.Recorder),
			Started:  time.Now(),
			Version:  p.version,
		}
		return jsonrpc.NewServer(p.config.Server, handlers.DefaultRegistry, services, logger.WithField("component", "rpc")), nil
	})
}

// sink builds the fan-out event sink: the in-memory recorder plus the
// durable journal when one is configured.
func (p *Provider) sink() (bank.Sink, error) {
	recorder, err := p.container.Get(ServiceRecorder)
	if err != nil {
		return nil, err
	}
	store, err := p.Journal()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return bank.FanOut(recorder.(*bank.Recorder)), nil
	}
	logger, err := p.Logger()
	if err != nil {
		return nil, err
	}
	return bank.FanOut(
		recorder.(*bank.Recorder),
		journal.NewSink(store, logger.WithField("component", "journal")),
	), nil
}

// Logger returns the process logger.
func (p *Provider) Logger() (*logrus.Logger, error) {
	logger, err := p.container.Get(ServiceLogger)
	if err != nil {
		return nil, err
	}
	return logger.(*logrus.Logger), nil
}

// Bank returns the accounting engine.
func (p *Provider) Bank() (*bank.Bank, error) {
	b, err := p.container.Get(ServiceBank)
	if err != nil {
		return nil, err
	}
	return b.(*bank.Bank), nil
}

// Journal returns the durable operation journal, or nil when the "none"
// driver is configured.
func (p *Provider) Journal() (journal.Store, error) {
	if p.config.Journal.Driver == "none" {
		return nil, nil
	}
	store, err := p.container.Get(ServiceJournal)
	if err != nil {
		return nil, err
	}
	return store.(journal.Store), nil
}

// RPCServer returns the JSON-RPC server.
func (p *Provider) RPCServer() (*jsonrpc.Server, error) {
	srv, err := p.container.Get(ServiceRPCServer)
	if err != nil {
		return nil, err
	}
	return srv.(*jsonrpc.Server), nil
}

// FeedRunner returns the background feed subscriber when the websocket
// source is configured, nil otherwise.
func (p *Provider) FeedRunner() (*feed.Subscriber, error) {
	source, err := p.container.Get(ServiceFeedSource)
	if err != nil {
		return nil, err
	}
	if sub, ok := source.(*feed.Subscriber); ok {
		return sub, nil
	}
	return nil, nil
}

// LedgerDB returns the ledger database for shutdown.
func (p *Provider) LedgerDB() (ledgerdb.DB, error) {
	db, err := p.container.Get(ServiceLedgerDB)
	if err != nil {
		return nil, err
	}
	return db.(ledgerdb.DB), nil
}
