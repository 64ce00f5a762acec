package redisserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/litekv-go/internal/core/domain"
	"github.com/yndnr/litekv-go/internal/core/service"
	"github.com/yndnr/litekv-go/internal/protocol/resp"
	"github.com/yndnr/litekv-go/internal/telemetry/metric"
)

const (
	readBufferSize = 16 * 1024
	transportLabel = "resp"
)

// Config holds the RESP listener configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// ReadTimeout bounds the wait for the rest of a started frame.
	// Zero disables it.
	ReadTimeout time.Duration
	// WriteTimeout bounds each reply write. Zero disables it.
	WriteTimeout time.Duration
	// IdleTimeout closes a connection with nothing buffered after this long.
	// Zero keeps idle connections open.
	IdleTimeout time.Duration
	// RateLimit is the commands per second per client IP. Zero disables it.
	RateLimit int
	// MaxBufferBytes closes a connection whose unparsed bytes exceed it.
	// Zero disables the check.
	MaxBufferBytes int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:6379",
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  5 * time.Minute,
	}
}

// Server accepts RESP connections.
type Server struct {
	cfg      Config
	exec     Executor
	limiters *service.RateLimiterRegistry
	metrics  *metric.Registry
	logger   *slog.Logger

	ln      net.Listener
	running atomic.Bool
	wg      sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics reports connections, protocol errors and rate limiting to m.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server executing commands with exec.
func New(cfg Config, exec Executor, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		exec:     exec,
		limiters: service.NewRateLimiterRegistry(cfg.RateLimit),
		logger:   slog.Default(),
		conns:    make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and serves connections in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves connections from ln in the background.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("redis server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("redis accept loop stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, closes open connections and waits for their
// goroutines until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}

	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		c, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				time.Sleep(10 * time.Millisecond)
				continue
			}
			return err
		}

		if !s.track(c) {
			_ = c.Close()
			return nil
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(c)
		}()
	}
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) serveConn(c net.Conn) {
	defer c.Close()

	id := ulid.Make().String()
	remote := c.RemoteAddr().String()
	log := s.logger.With("conn_id", id, "remote", remote)

	if s.metrics != nil {
		s.metrics.ConnectionsTotal.WithLabelValues(transportLabel).Inc()
		s.metrics.ConnectionsActive.WithLabelValues(transportLabel).Inc()
		defer s.metrics.ConnectionsActive.WithLabelValues(transportLabel).Dec()
	}

	d := s.newDispatcher(clientIP(c.RemoteAddr()), log)
	defer s.releaseLimiter(clientIP(c.RemoteAddr()))

	log.Debug("connection opened")
	defer log.Debug("connection closed")

	buf := make([]byte, readBufferSize)
	for {
		if err := c.SetReadDeadline(s.readDeadline(d.Buffered())); err != nil {
			return
		}

		n, err := c.Read(buf)
		if n > 0 {
			if out := d.Feed(buf[:n]); len(out) > 0 {
				if werr := s.write(c, out); werr != nil {
					log.Debug("write failed", "error", werr)
					return
				}
			}
			if s.cfg.MaxBufferBytes > 0 && d.Buffered() > s.cfg.MaxBufferBytes {
				log.Warn("connection buffer limit exceeded",
					"buffered", d.Buffered(),
					"limit", s.cfg.MaxBufferBytes)
				_ = s.write(c, resp.AppendError(nil, domain.ErrBufferOverflow.Message))
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				var ne net.Error
				if errors.As(err, &ne) && ne.Timeout() {
					log.Debug("connection timed out", "buffered", d.Buffered())
				} else {
					log.Debug("connection read error", "error", err)
				}
			}
			return
		}
	}
}

func (s *Server) newDispatcher(ip string, log *slog.Logger) *Dispatcher {
	opts := []DispatcherOption{
		WithProtocolErrorHook(func(msg string) {
			log.Debug("protocol error", "reason", msg)
			if s.metrics != nil {
				s.metrics.ProtocolErrors.Inc()
			}
		}),
	}

	if limiter := s.limiters.Acquire(ip); limiter != nil {
		opts = append(opts,
			WithAllow(limiter.Allow),
			WithRateLimitHook(func() {
				if s.metrics != nil {
					s.metrics.RateLimited.Inc()
				}
			}))
	}
	return NewDispatcher(s.exec, opts...)
}

func (s *Server) releaseLimiter(ip string) {
	s.limiters.Release(ip)
}

// readDeadline picks the idle timeout between frames and the read timeout
// inside one. The zero time means no deadline.
func (s *Server) readDeadline(buffered int) time.Time {
	timeout := s.cfg.IdleTimeout
	if buffered > 0 {
		timeout = s.cfg.ReadTimeout
	}
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

func (s *Server) write(c net.Conn, p []byte) error {
	if s.cfg.WriteTimeout > 0 {
		if err := c.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
			return err
		}
	}
	_, err := c.Write(p)
	return err
}

func clientIP(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
