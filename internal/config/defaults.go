package config

// Default values for optional configuration fields.
const (
	DefaultAddr            = ":8080"
	DefaultStorageDriver   = "memory"
	DefaultSQLitePath      = "marketplace.db"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "disable"
	DefaultClientBuffer    = 64
	DefaultOperatorAddress = "0x00000000000000000000000000004d61726b6574"
)

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}

	if c.Market.OperatorAddress == "" {
		c.Market.OperatorAddress = DefaultOperatorAddress
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Storage.Path == "" {
		c.Storage.Path = DefaultSQLitePath
	}
	if c.Storage.Postgres.Port == 0 {
		c.Storage.Postgres.Port = DefaultDBPort
	}
	if c.Storage.Postgres.SSLMode == "" {
		c.Storage.Postgres.SSLMode = DefaultDBSSLMode
	}

	if c.Feed.ClientBuffer == 0 {
		c.Feed.ClientBuffer = DefaultClientBuffer
	}
}
