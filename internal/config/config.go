// Package config loads and hot-reloads the directory server's YAML
// configuration, grounded on the pack's ConfigManager pattern
// (gopkg.in/yaml.v3 load/validate/apply-defaults, with a polling watcher
// that reloads on file modification and notifies registered watchers).
package config

import "time"

// Config is the directory server's top-level configuration.
type Config struct {
	// Listen is the "host:port" the server binds to. Defaults to
	// ":3890", the LDAP port the original program used.
	Listen string `yaml:"listen"`

	// ACLRefreshPeriod controls how often the access-control manager
	// re-reads rules from storage. Non-positive means refresh exactly
	// once at startup and never again.
	ACLRefreshPeriod time.Duration `yaml:"aclRefreshPeriod"`

	// NoAuthentication disables bind credential checking, accepting
	// any bind as successful. Intended for local testing only.
	NoAuthentication bool `yaml:"noAuthentication"`

	LogLevel string `yaml:"logLevel"`

	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Driver names the backend implementation. The only built-in
	// driver is "memory"; validation rejects any other value, since the
	// server carries no database driver itself.
	Driver string `yaml:"driver"`

	// SeedRulesFile, if set, is a newline-delimited file of "to ...
	// by ..." directives loaded into the memory backend at startup.
	SeedRulesFile string `yaml:"seedRulesFile"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		Listen:           ":3890",
		ACLRefreshPeriod: 0,
		LogLevel:         "info",
		Storage:          StorageConfig{Driver: "memory"},
	}
}
