package journal

import (
	"fmt"
	"net/url"
	"time"
)

// Config selects and parameterizes the journal database.
type Config struct {
	// Driver is "sqlite", "postgres" or "none". "none" disables the
	// journal entirely.
	Driver string `toml:"driver" mapstructure:"driver"`

	// Path is the database file for the sqlite driver.
	Path string `toml:"path" mapstructure:"path"`

	// DSN is a full connection string; when set it overrides the
	// field-by-field postgres settings below.
	DSN      string `toml:"dsn" mapstructure:"dsn"`
	Host     string `toml:"host" mapstructure:"host"`
	Port     int    `toml:"port" mapstructure:"port"`
	Database string `toml:"database" mapstructure:"database"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`
	SSLMode  string `toml:"ssl_mode" mapstructure:"ssl_mode"`

	MaxOpenConns int           `toml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns int           `toml:"max_idle_conns" mapstructure:"max_idle_conns"`
	Timeout      time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// DefaultConfig returns a sqlite journal rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Driver:       "sqlite",
		Path:         path,
		SSLMode:      "prefer",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		Timeout:      5 * time.Second,
	}
}

// Validate checks the configuration before a store is opened.
func (c Config) Validate() error {
	switch c.Driver {
	case "none":
		return nil
	case "sqlite":
		if c.Path == "" {
			return fmt.Errorf("journal: sqlite driver requires a path")
		}
	case "postgres":
		if c.DSN == "" && (c.Host == "" || c.Database == "") {
			return fmt.Errorf("journal: postgres driver requires a dsn or host and database")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("journal: timeout must be positive")
	}
	return nil
}

// ConnString builds the driver-specific connection string.
func (c Config) ConnString() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	if c.DSN != "" {
		return c.DSN
	}

	u := url.URL{Scheme: "postgres", Host: c.Host, Path: "/" + c.Database}
	if c.Port != 0 {
		u.Host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	params := url.Values{}
	if c.SSLMode != "" {
		params.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = params.Encode()
	return u.String()
}
