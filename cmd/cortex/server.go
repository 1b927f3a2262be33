package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cogniscale/cortex/api/auth"
	"github.com/cogniscale/cortex/api/httpapi"
	"github.com/cogniscale/cortex/api/ratelimit"
	"github.com/cogniscale/cortex/api/reqlog"
	"github.com/cogniscale/cortex/api/wsevents"
	"github.com/cogniscale/cortex/config"
	"github.com/cogniscale/cortex/facade"
	"github.com/cogniscale/cortex/internal/server"
	"github.com/cogniscale/cortex/internal/telemetry"
)

// runServe wires the facade to the external API surface and serves it
// until a shutdown signal arrives, mirroring the teacher's load-config,
// init-telemetry, init-facade, start-server, wait-for-shutdown sequence.
func runServe(args []string) int {
	configPath := ""
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		configPath = args[0]
	}
	for i, a := range args {
		if a == "--config" && i+1 < len(args) {
			configPath = args[i+1]
		}
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("init telemetry", zap.Error(err))
		return exitConfigError
	}

	f, err := facade.Initialize(cfg, nil, nil, logger)
	if err != nil {
		logger.Error("init facade", zap.Error(err))
		return exitConfigError
	}

	if err := f.Registry().RegisterAgent(EchoAgent{}); err != nil {
		logger.Error("register demo agent", zap.Error(err))
		return exitConfigError
	}

	ctx, cancelLimiter := context.WithCancel(context.Background())
	defer cancelLimiter()

	authenticator := auth.NewAuthenticator(cfg.Auth, "cortex", logger)
	limiter := ratelimit.NewLimiter(ctx, cfg.RateLimit, logger)
	logSink := reqlog.NewZapSink(logger)
	events := wsevents.NewHub(logger)

	reloadMgr := config.NewHotReloadManager(cfg,
		config.WithHotReloadLogger(logger),
		config.WithConfigPath(configPath),
	)
	configAPI := config.NewConfigAPIHandler(reloadMgr)

	router := httpapi.NewRouter(httpapi.Deps{
		Facade:         f,
		Authenticator:  authenticator,
		Limiter:        limiter,
		LogSink:        logSink,
		Events:         events,
		ConfigRoutes:   configAPI.RegisterRoutes,
		AllowedOrigins: nil,
		Version:        Version,
		Logger:         logger,
	})

	serverCfg := server.Config{
		Addr:            fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     server.DefaultConfig().IdleTimeout,
		MaxHeaderBytes:  server.DefaultConfig().MaxHeaderBytes,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	if serverCfg.Addr == ":0" {
		serverCfg.Addr = server.DefaultConfig().Addr
	}

	mgr := server.NewManager(router, serverCfg, logger)
	if err := mgr.Start(); err != nil {
		logger.Error("start http server", zap.Error(err))
		return exitRuntimeError
	}
	logger.Info("cortex serving", zap.String("addr", serverCfg.Addr))

	mgr.WaitForShutdown()

	shutdownCtx := context.Background()
	if err := f.Shutdown(shutdownCtx); err != nil {
		logger.Error("facade shutdown", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown", zap.Error(err))
	}
	return exitSuccess
}
