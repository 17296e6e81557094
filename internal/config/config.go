// Package config defines the marketplace server configuration, loaded from
// YAML with environment variable expansion.
package config

import "fmt"

// Config is the top-level server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Market  MarketConfig  `yaml:"market"`
	Storage StorageConfig `yaml:"storage"`
	Feed    FeedConfig    `yaml:"feed"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// AuthToken guards mutating endpoints when set; empty disables auth.
	AuthToken string `yaml:"auth_token"`
}

// MarketConfig holds marketplace identity settings.
type MarketConfig struct {
	// OperatorAddress is the address the marketplace presents when
	// checking transfer approvals against the asset registry.
	OperatorAddress string `yaml:"operator_address"`
}

// StorageConfig selects and configures the market store backend.
type StorageConfig struct {
	// Driver is one of "memory", "sqlite", or "postgres".
	Driver   string   `yaml:"driver"`
	Path     string   `yaml:"path"` // sqlite database file
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnString builds the lib/pq connection string.
func (db DBConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
}

// FeedConfig holds websocket event feed settings.
type FeedConfig struct {
	// ClientBuffer is the per-client outbound message buffer; clients
	// that fall behind by more than this are dropped.
	ClientBuffer int `yaml:"client_buffer"`
}
