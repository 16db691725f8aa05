package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dreamware/worldmesh/internal/config"
	"github.com/dreamware/worldmesh/internal/coordinator"
	"github.com/dreamware/worldmesh/internal/event"
)

func main() {
	log := newLogger(getenv("LOG_LEVEL", "info"))
	defer log.Sync()

	addr := getenv("COORDINATOR_ADDR", ":8080")
	cfgPath := getenv("WORLDMESH_CONFIG", "")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalw("load topology", "path", cfgPath, "err", err)
	}
	coord, err := cfg.Build()
	if err != nil {
		log.Fatalw("build topology", "err", err)
	}

	validator, err := event.NewPayloadValidator(cfg.Schemas)
	if err != nil {
		log.Fatalw("compile payload schemas", "err", err)
	}

	srv := newServer(coord, validator, log)

	monitor := coordinator.NewOverflowMonitor(10*time.Second, 0.25, log)
	monitor.SetOnHot(func(shardID string) {
		log.Warnw("shard overflow rate sustained above threshold", "shard", shardID)
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, coord.ShardInfos)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("coordinator listening", "addr", addr, "clusters", coord.Count())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("listen", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	srv.hub.Close()
	monitor.Stop()
	log.Info("coordinator stopped")
}

func newLogger(level string) *zap.SugaredLogger {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Sugar()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
