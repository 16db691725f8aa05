// Package main implements worldbot, a synthetic load generator that drives
// a Worldmesh coordinator with randomized world events.
//
// The bot is a client of the coordinator, responsible for:
//   - Fetching the topology to learn the world's extent
//   - Submitting randomized events at a fixed rate
//   - Tracking how many of its events overflow
//   - Reporting throughput and overflow ratio periodically
//
// Configuration:
//   - COORDINATOR_ADDR: Coordinator URL (required)
//   - BOT_RATE_HZ: Events per second (default: "10")
//   - BOT_WORLD_EXTENT: Half-width of the cube positions are drawn from
//     (default: "1000")
//   - BOT_MAX_RADIUS: Upper bound for event radii (default: "50")
//   - BOT_EVENT_TYPES: Comma-separated event types (default:
//     "explosion,spawn,quake")
//   - LOG_LEVEL: zap level (default: "info")
//
// Example usage:
//
//	COORDINATOR_ADDR=http://localhost:8080 \
//	BOT_RATE_HZ=50 \
//	./worldbot
package main

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dreamware/worldmesh/internal/api"
	"github.com/dreamware/worldmesh/internal/geom"
)

// logFatal is a variable to allow mocking in tests.
var logFatal func(msg string, kv ...any)

func main() {
	log := newLogger(getenv("LOG_LEVEL", "info"))
	defer log.Sync()
	logFatal = log.Fatalw

	coord := mustGetenv("COORDINATOR_ADDR")
	rateHz := mustParseFloat("BOT_RATE_HZ", getenv("BOT_RATE_HZ", "10"))
	extent := mustParseFloat("BOT_WORLD_EXTENT", getenv("BOT_WORLD_EXTENT", "1000"))
	maxRadius := mustParseFloat("BOT_MAX_RADIUS", getenv("BOT_MAX_RADIUS", "50"))
	types := strings.Split(getenv("BOT_EVENT_TYPES", "explosion,spawn,quake"), ",")

	if rateHz <= 0 {
		logFatal("BOT_RATE_HZ must be positive", "value", rateHz)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		cancel()
	}()

	waitForCoordinator(ctx, coord, log)

	bot := &bot{
		coord:     coord,
		extent:    extent,
		maxRadius: maxRadius,
		types:     types,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		log:       log,
	}
	bot.run(ctx, rateHz)
	log.Info("worldbot stopped")
}

// waitForCoordinator retries the topology endpoint until the coordinator
// answers, tolerating startup ordering between the two processes.
func waitForCoordinator(ctx context.Context, coord string, log *zap.SugaredLogger) {
	var topo api.TopologyResponse
	var lastErr error
	for i := 0; i < 10; i++ {
		if ctx.Err() != nil {
			return
		}
		lastErr = api.GetJSON(ctx, coord+"/topology", &topo)
		if lastErr == nil {
			log.Infow("coordinator reachable", "addr", coord, "clusters", len(topo.Clusters))
			return
		}
		log.Infow("waiting for coordinator", "attempt", i+1, "err", lastErr)
		time.Sleep(400 * time.Millisecond)
	}
	logFatal("coordinator unreachable", "addr", coord, "err", lastErr)
}

type bot struct {
	coord     string
	extent    float64
	maxRadius float64
	types     []string
	rng       *rand.Rand
	log       *zap.SugaredLogger

	sent      uint64
	overflows uint64
	failures  uint64
}

// run submits events at the configured rate until the context is canceled,
// logging a summary line every ten seconds.
func (b *bot) run(ctx context.Context, rateHz float64) {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / rateHz))
	defer ticker.Stop()
	report := time.NewTicker(10 * time.Second)
	defer report.Stop()

	b.log.Infow("worldbot running", "rate_hz", rateHz, "extent", b.extent, "types", b.types)

	for {
		select {
		case <-ticker.C:
			b.submitOne(ctx)
		case <-report.C:
			b.report()
		case <-ctx.Done():
			b.report()
			return
		}
	}
}

func (b *bot) submitOne(ctx context.Context) {
	req := api.EventRequest{
		Type:     b.types[b.rng.Intn(len(b.types))],
		Position: b.randomPosition(),
		Radius:   b.rng.Float64() * b.maxRadius,
	}

	callCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var resp api.EventResponse
	if err := api.PostJSON(callCtx, b.coord+"/events", req, &resp); err != nil {
		b.failures++
		b.log.Debugw("event rejected", "err", err)
		return
	}
	b.sent++
	if resp.Overflow {
		b.overflows++
	}
}

// randomPosition draws from a cube slightly wider than the nominal world,
// so a fraction of events land outside every region and exercise the
// overflow path.
func (b *bot) randomPosition() geom.Vec3 {
	span := b.extent * 1.1
	return geom.Vec3{
		X: (b.rng.Float64()*2 - 1) * span,
		Y: (b.rng.Float64()*2 - 1) * span,
		Z: (b.rng.Float64()*2 - 1) * span,
	}
}

func (b *bot) report() {
	ratio := 0.0
	if b.sent > 0 {
		ratio = float64(b.overflows) / float64(b.sent)
	}
	b.log.Infow("worldbot progress",
		"sent", b.sent,
		"overflows", b.overflows,
		"overflow_ratio", ratio,
		"failures", b.failures)
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

func mustGetenv(k string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	logFatal("missing env", "key", k)
	return ""
}

func mustParseFloat(name, v string) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logFatal("invalid numeric env", "key", name, "value", v)
		return 0
	}
	return f
}
