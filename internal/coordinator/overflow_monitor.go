// Package coordinator implements the orchestration layer at the top of
// Worldmesh's spatial sharding hierarchy.
// This file implements overflow-rate monitoring for the shards in a topology.
package coordinator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/worldmesh/internal/shard"
)

// Shard temperature statuses reported by the overflow monitor.
const (
	// LoadStatusUnknown means the shard has not completed a full sample window yet
	LoadStatusUnknown = "unknown"
	// LoadStatusCool means the shard's recent overflow rate is below the threshold
	LoadStatusCool = "cool"
	// LoadStatusHot means the shard has sustained an overflow rate above the threshold
	LoadStatusHot = "hot"
)

// ShardLoad tracks the overflow pressure on a single shard across sample
// windows. A shard that keeps signalling overflow is a shard whose region
// no longer matches where events actually land, which is the input signal
// for re-sharding decisions.
// Thread-safe: protected by the OverflowMonitor's mutex when accessed.
type ShardLoad struct {
	ShardID        string    // Shard being observed
	Status         string    // Current status: "cool", "hot", "unknown"
	LastSample     time.Time // Timestamp of the last completed sample window
	Events         uint64    // Events evaluated during the last window
	Overflows      uint64    // Overflows signalled during the last window
	OverflowRate   float64   // Overflows/Events for the last window
	ConsecutiveHot int       // Number of consecutive windows above threshold
}

// OverflowMonitor periodically samples per-shard statistics, computes the
// overflow rate for each window, and invokes an escalation callback when a
// shard stays hot for several consecutive windows. The monitor only
// observes and signals; escalation itself (re-sharding, handoff) is the
// caller's responsibility.
// Thread-safe: all methods are safe for concurrent access.
type OverflowMonitor struct {
	shards map[string]*shardSample // Observed state per shard

	interval      time.Duration // How often to sample shard stats
	rateThreshold float64       // Overflow rate above which a window is hot
	minEvents     uint64        // Windows with fewer events are ignored
	maxHotWindows int           // Consecutive hot windows before callback

	onHot func(shardID string) // Callback when a shard turns hot

	log    *zap.SugaredLogger
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
}

// shardSample couples the public load view with the counter snapshot taken
// at the previous window boundary.
type shardSample struct {
	load      ShardLoad
	prevStats shard.Stats
	hasPrev   bool
}

// NewOverflowMonitor creates an overflow monitor.
//
// Parameters:
//   - interval: length of a sample window (recommended: a few seconds)
//   - rateThreshold: overflow fraction above which a window counts as hot,
//     in (0, 1]
//   - log: sugared logger; nil falls back to a no-op logger
//
// A shard is marked hot after 3 consecutive hot windows, and windows with
// fewer than 10 events are skipped to avoid flapping on idle shards.
func NewOverflowMonitor(interval time.Duration, rateThreshold float64, log *zap.SugaredLogger) *OverflowMonitor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &OverflowMonitor{
		shards:        make(map[string]*shardSample),
		interval:      interval,
		rateThreshold: rateThreshold,
		minEvents:     10,
		maxHotWindows: 3,
		log:           log,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// SetOnHot sets the callback invoked when a shard transitions to hot.
// Typically used to trigger re-sharding or operator alerts.
func (m *OverflowMonitor) SetOnHot(callback func(shardID string)) {
	m.onHot = callback
}

// Start begins sampling in the current goroutine, reading the topology's
// current shard stats from the provider each window. Blocks until the
// context is canceled or Stop is called.
//
// Example:
//
//	go monitor.Start(ctx, coord.ShardInfos)
func (m *OverflowMonitor) Start(ctx context.Context, provider func() []shard.Info) {
	m.wg.Add(1)
	defer m.wg.Done()

	if ctx == nil {
		ctx = m.ctx
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Infow("overflow monitor started", "interval", m.interval, "threshold", m.rateThreshold)

	// Take an initial snapshot so the first full window has a baseline
	m.sampleAll(provider())

	for {
		select {
		case <-ticker.C:
			m.sampleAll(provider())
		case <-ctx.Done():
			m.log.Info("overflow monitor stopping: context canceled")
			return
		case <-m.ctx.Done():
			m.log.Info("overflow monitor stopping: internal cancellation")
			return
		}
	}
}

// Stop gracefully shuts down the monitor and waits for the sampling
// goroutine to finish.
func (m *OverflowMonitor) Stop() {
	m.cancel()
	m.wg.Wait()
	m.log.Info("overflow monitor stopped")
}

// sampleAll closes the current window for every provided shard and drops
// shards that have left the topology.
func (m *OverflowMonitor) sampleAll(infos []shard.Info) {
	current := make(map[string]bool, len(infos))

	for _, info := range infos {
		current[info.ID] = true
		m.sampleShard(info)
	}

	m.mu.Lock()
	for id := range m.shards {
		if !current[id] {
			delete(m.shards, id)
			m.log.Infow("shard removed from overflow monitoring", "shard", id)
		}
	}
	m.mu.Unlock()
}

// sampleShard computes the window delta for one shard and updates its
// status, firing the hot callback on a cool-to-hot transition.
func (m *OverflowMonitor) sampleShard(info shard.Info) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sample, exists := m.shards[info.ID]
	if !exists {
		sample = &shardSample{
			load: ShardLoad{ShardID: info.ID, Status: LoadStatusUnknown},
		}
		m.shards[info.ID] = sample
	}

	stats := shard.Stats{Events: info.Events, Overflows: info.Overflows}
	if !sample.hasPrev {
		sample.prevStats = stats
		sample.hasPrev = true
		return
	}

	// A counter running backwards means the shard was swapped out under the
	// same ID. Re-baseline instead of letting the uint64 delta wrap.
	if stats.Events < sample.prevStats.Events || stats.Overflows < sample.prevStats.Overflows {
		sample.prevStats = stats
		m.log.Infow("shard counters reset, re-baselining", "shard", info.ID)
		return
	}

	events := stats.Events - sample.prevStats.Events
	overflows := stats.Overflows - sample.prevStats.Overflows
	sample.prevStats = stats

	sample.load.LastSample = time.Now()
	sample.load.Events = events
	sample.load.Overflows = overflows

	if events < m.minEvents {
		// Too quiet to judge; keep the previous status but do not let a
		// silent window extend a hot streak
		sample.load.OverflowRate = 0
		return
	}

	rate := float64(overflows) / float64(events)
	sample.load.OverflowRate = rate

	if rate > m.rateThreshold {
		sample.load.ConsecutiveHot++
		m.log.Warnw("shard overflow rate above threshold",
			"shard", info.ID,
			"rate", rate,
			"window", sample.load.ConsecutiveHot,
			"needed", m.maxHotWindows)

		if sample.load.ConsecutiveHot >= m.maxHotWindows {
			previous := sample.load.Status
			sample.load.Status = LoadStatusHot

			if previous != LoadStatusHot && m.onHot != nil {
				m.log.Warnw("shard marked hot", "shard", info.ID, "rate", rate)
				// Call the callback without holding the lock
				go m.onHot(info.ID)
			}
		}
	} else {
		if sample.load.Status == LoadStatusHot {
			m.log.Infow("shard cooled down", "shard", info.ID, "rate", rate)
		}
		sample.load.Status = LoadStatusCool
		sample.load.ConsecutiveHot = 0
	}
}

// GetShardLoad returns the current load view for a specific shard.
// Returns nil if the shard is not being monitored.
func (m *OverflowMonitor) GetShardLoad(shardID string) *ShardLoad {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sample, exists := m.shards[shardID]
	if !exists {
		return nil
	}

	// Return a copy to prevent external modification
	load := sample.load
	return &load
}

// GetAllShardLoads returns the load view of all monitored shards,
// keyed by shard ID
func (m *OverflowMonitor) GetAllShardLoads() map[string]*ShardLoad {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]*ShardLoad, len(m.shards))
	for id, sample := range m.shards {
		load := sample.load
		result[id] = &load
	}
	return result
}

// IsHot returns whether a specific shard is currently marked hot.
// Returns false if the shard is not being monitored.
func (m *OverflowMonitor) IsHot(shardID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sample, exists := m.shards[shardID]
	if !exists {
		return false
	}
	return sample.load.Status == LoadStatusHot
}
