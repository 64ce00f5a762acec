// Package config defines the server configuration structure.
package config

import "time"

// ServerConfig is the root configuration for litekv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection groups the listeners.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	HTTP  HTTPConfig  `koanf:"http"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	// Addr is the TCP listen address.
	Addr string `koanf:"addr"`

	// ReadTimeout bounds a single read. Zero disables the deadline.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds a single reply write.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout closes connections with no traffic for this long.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// RateLimit is the commands per second allowed per client IP (0 = off).
	RateLimit int `koanf:"rate_limit"`

	// MaxBufferBytes caps unparsed bytes held per connection (0 = off).
	MaxBufferBytes int `koanf:"max_buffer_bytes"`
}

// HTTPConfig configures the admin HTTP listener.
type HTTPConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// WebSocket exposes the /ws command gateway.
	WebSocket bool `koanf:"websocket"`

	// AdminToken guards the mutating admin endpoints. Empty leaves them open.
	AdminToken string `koanf:"admin_token"`
}

// StorageSection groups persistence settings.
type StorageSection struct {
	AOF AOFConfig `koanf:"aof"`
}

// AOFConfig configures the append-only log.
type AOFConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`

	// RewriteOnStart compacts the log right after replay.
	RewriteOnStart bool `koanf:"rewrite_on_start"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CompoundKeys lists the dotted config keys whose last segment contains an
// underscore. Environment variable names flatten both separators to "_", so
// the loader needs these to map LITEKV_STORAGE_AOF_REWRITE_ON_START back to
// storage.aof.rewrite_on_start.
func CompoundKeys() []string {
	return []string{
		"server.redis.read_timeout",
		"server.redis.write_timeout",
		"server.redis.idle_timeout",
		"server.redis.rate_limit",
		"server.redis.max_buffer_bytes",
		"server.http.admin_token",
		"storage.aof.rewrite_on_start",
	}
}
