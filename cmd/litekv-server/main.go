package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/litekv-go/internal/core/service"
	"github.com/yndnr/litekv-go/internal/infra/buildinfo"
	"github.com/yndnr/litekv-go/internal/infra/confloader"
	"github.com/yndnr/litekv-go/internal/infra/shutdown"
	"github.com/yndnr/litekv-go/internal/server/config"
	"github.com/yndnr/litekv-go/internal/server/httpserver"
	"github.com/yndnr/litekv-go/internal/server/httpserver/handler"
	"github.com/yndnr/litekv-go/internal/server/redisserver"
	"github.com/yndnr/litekv-go/internal/storage"
	"github.com/yndnr/litekv-go/internal/storage/aof"
	"github.com/yndnr/litekv-go/internal/storage/memory"
	"github.com/yndnr/litekv-go/internal/telemetry/logger"
	"github.com/yndnr/litekv-go/internal/telemetry/metric"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds command-line overrides. Empty values leave the config alone.
type flags struct {
	configFile  string
	envFile     string
	addr        string
	aofPath     string
	logLevel    string
	showVersion bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "Path to configuration file")
	flag.StringVar(&f.envFile, "env-file", ".env", "Path to .env file (ignored if missing)")
	flag.StringVar(&f.addr, "addr", "", "RESP listen address (overrides server.redis.addr)")
	flag.StringVar(&f.aofPath, "aof", "", "Append-only log path (overrides storage.aof.path)")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level (overrides log.level)")
	flag.BoolVar(&f.showVersion, "version", false, "Show version information")
	flag.Parse()
	return f
}

func (f flags) overrides() map[string]any {
	m := make(map[string]any)
	if f.addr != "" {
		m["server.redis.addr"] = f.addr
	}
	if f.aofPath != "" {
		m["storage.aof.path"] = f.aofPath
	}
	if f.logLevel != "" {
		m["log.level"] = f.logLevel
	}
	return m
}

func run() error {
	f := parseFlags()
	if f.showVersion {
		fmt.Printf("litekv-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slogLogger := log.Slog()

	bi := buildinfo.Get()
	log.Info("starting litekv-server",
		"version", bi.Version,
		"commit", bi.Commit,
		"config", f.configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()

	engine := initStorage(cfg, metrics, slogLogger)
	ctx := context.Background()
	if err := engine.Recover(ctx); err != nil {
		_ = engine.Close()
		return fmt.Errorf("storage recovery: %w", err)
	}
	st := engine.ReplayStats()
	metrics.ReplayCommands.Set(float64(st.Commands))
	metrics.ReplayBytes.Set(float64(st.Bytes))

	if err := metrics.Register(metric.NewStoreCollector(engine.Store(), logSource(engine.AOF()))); err != nil {
		return fmt.Errorf("register store collector: %w", err)
	}

	svcOpts := []service.Option{service.WithObserver(metrics)}
	if engine.AOF() != nil {
		svcOpts = append(svcOpts, service.WithLog(engine))
	}
	kv := service.NewKVService(engine.Store(), svcOpts...)

	sh := shutdown.NewHandler(shutdownTimeout)
	sh.SetLogger(slogLogger)
	sh.OnShutdown("storage", func(context.Context) error {
		return engine.Close()
	})

	redisSrv := redisserver.New(redisserver.Config{
		Addr:           cfg.Server.Redis.Addr,
		ReadTimeout:    cfg.Server.Redis.ReadTimeout,
		WriteTimeout:   cfg.Server.Redis.WriteTimeout,
		IdleTimeout:    cfg.Server.Redis.IdleTimeout,
		RateLimit:      cfg.Server.Redis.RateLimit,
		MaxBufferBytes: cfg.Server.Redis.MaxBufferBytes,
	}, kv, redisserver.WithLogger(slogLogger), redisserver.WithMetrics(metrics))
	if err := redisSrv.Start(ctx); err != nil {
		_ = sh.Run()
		return fmt.Errorf("start redis server: %w", err)
	}
	sh.OnShutdown("redis", redisSrv.Shutdown)

	if cfg.Server.HTTP.Enabled {
		h := handler.New(handler.Config{
			Engine:    engine,
			Executor:  kv,
			Metrics:   metrics,
			Logger:    slogLogger,
			WebSocket: cfg.Server.HTTP.WebSocket,
		})
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Handler:    h,
			Metrics:    metrics,
			AdminToken: cfg.Server.HTTP.AdminToken,
			Logger:     slogLogger,
		})
		httpSrv := httpserver.New(cfg.Server.HTTP.Addr, router, slogLogger)
		if err := httpSrv.Start(); err != nil {
			_ = sh.Run()
			return fmt.Errorf("start http server: %w", err)
		}
		sh.OnShutdown("http", httpSrv.Shutdown)
	}

	if f.configFile != "" {
		w, err := watchConfig(f, slogLogger)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			sh.OnShutdown("config-watcher", func(context.Context) error { return w.Stop() })
		}
	}

	log.Info("server started", "keys", engine.Store().Len())
	if err := sh.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig merges defaults, file, .env, environment and flags.
func loadConfig(f flags) (*config.ServerConfig, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(f.configFile),
		confloader.WithDotEnv(f.envFile),
		confloader.WithCompoundKeys(config.CompoundKeys()...),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	if o := f.overrides(); len(o) > 0 {
		if err := loader.LoadMap(o); err != nil {
			return nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func initStorage(cfg *config.ServerConfig, m *metric.Registry, log *slog.Logger) *storage.Engine {
	storageCfg := storage.DefaultConfig(cfg.Storage.AOF.Path)
	storageCfg.AOFEnabled = cfg.Storage.AOF.Enabled
	storageCfg.RewriteOnStart = cfg.Storage.AOF.RewriteOnStart
	storageCfg.Logger = log
	storageCfg.StoreOptions = []memory.Option{memory.WithExpireHook(m.ObserveExpired)}
	return storage.New(storageCfg)
}

// logSource avoids handing the collector a typed nil.
func logSource(w *aof.Writer) metric.LogSource {
	if w == nil {
		return nil
	}
	return w
}

// watchConfig reloads the log level whenever the config file changes.
// Other settings need a restart.
func watchConfig(f flags, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(f.configFile); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(f)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
