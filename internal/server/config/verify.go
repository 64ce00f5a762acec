// Package config defines the server configuration structure.
package config

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/yndnr/litekv-go/internal/core/domain"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"json", "text"}
)

// Verify validates the configuration. All problems are reported together
// wrapped in domain.ErrConfigInvalid.
func Verify(cfg *ServerConfig) error {
	errs := append(verifyServer(cfg), verifyStorage(cfg)...)
	errs = append(errs, verifyLog(cfg)...)
	if len(errs) == 0 {
		return nil
	}
	return domain.ErrConfigInvalid.WithCause(errors.Join(errs...))
}

func verifyServer(cfg *ServerConfig) []error {
	var errs []error
	r := cfg.Server.Redis

	if r.Addr == "" {
		errs = append(errs, errors.New("server.redis.addr is required"))
	}
	if r.ReadTimeout < 0 || r.WriteTimeout < 0 || r.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.redis timeouts must not be negative"))
	}
	if r.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.redis.rate_limit must not be negative, got %d", r.RateLimit))
	}
	if r.MaxBufferBytes < 0 {
		errs = append(errs, fmt.Errorf("server.redis.max_buffer_bytes must not be negative, got %d", r.MaxBufferBytes))
	}

	h := cfg.Server.HTTP
	if h.Enabled {
		if h.Addr == "" {
			errs = append(errs, errors.New("server.http.addr is required when http is enabled"))
		} else if h.Addr == r.Addr {
			errs = append(errs, fmt.Errorf("server.http.addr conflicts with server.redis.addr (%s)", h.Addr))
		}
	}
	if h.WebSocket && !h.Enabled {
		errs = append(errs, errors.New("server.http.websocket requires server.http.enabled"))
	}
	return errs
}

func verifyStorage(cfg *ServerConfig) []error {
	var errs []error
	a := cfg.Storage.AOF
	if a.Enabled && a.Path == "" {
		errs = append(errs, errors.New("storage.aof.path is required when aof is enabled"))
	}
	if a.RewriteOnStart && !a.Enabled {
		errs = append(errs, errors.New("storage.aof.rewrite_on_start requires storage.aof.enabled"))
	}
	return errs
}

func verifyLog(cfg *ServerConfig) []error {
	var errs []error
	if !lo.Contains(validLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v, got %q", validLevels, cfg.Log.Level))
	}
	if !lo.Contains(validFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v, got %q", validFormats, cfg.Log.Format))
	}
	return errs
}
