// Package config defines the server configuration structure.
package config

import "time"

// Default values.
const (
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultReadTimeout    = 0
	DefaultWriteTimeout   = 10 * time.Second
	DefaultIdleTimeout    = 5 * time.Minute
	DefaultRateLimit      = 0
	DefaultMaxBufferBytes = 64 << 20

	DefaultHTTPAddr = "127.0.0.1:8080"

	DefaultAOFPath = "appendonly.aof"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns a ServerConfig with default values.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:           DefaultRedisAddr,
				ReadTimeout:    DefaultReadTimeout,
				WriteTimeout:   DefaultWriteTimeout,
				IdleTimeout:    DefaultIdleTimeout,
				RateLimit:      DefaultRateLimit,
				MaxBufferBytes: DefaultMaxBufferBytes,
			},
			HTTP: HTTPConfig{
				Enabled:   false,
				Addr:      DefaultHTTPAddr,
				WebSocket: false,
			},
		},
		Storage: StorageSection{
			AOF: AOFConfig{
				Enabled: true,
				Path:    DefaultAOFPath,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
