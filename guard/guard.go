// Package guard admits or rejects new sessions based on static resource
// thresholds, adapted from ws/internal/shared/limits/resource_guard.go's
// ResourceGuard — generalized from "reject connections / pause Kafka" to
// "reject new sessions", since the simulation core has no consumption
// pause switch of its own to throttle.
package guard

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/TimonPost/net-sync/metrics"
)

// Config is the static admission policy.
type Config struct {
	MaxSessions        int
	CPURejectThreshold float64 // percent, 0-100
	MemoryRejectBytes  int64
}

// Guard enforces Config against live process measurements.
type Guard struct {
	config     Config
	logger     zerolog.Logger
	proc       *process.Process
	cpuSampler *cgroupCPUSampler // nil if cgroup CPU accounting is unavailable

	currentCPU    atomic.Value // float64
	currentMemory atomic.Value // int64
}

// New constructs a Guard for the current process. CPU is sampled relative
// to the container's cgroup CPU quota when available, falling back to
// gopsutil's host-wide reading otherwise (bare metal, non-Linux, or no
// cgroup mount) — mirrors ws/internal/single/platform/cgroup_cpu.go's
// CPUMonitor container/host fallback.
func New(config Config, logger zerolog.Logger) *Guard {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warn().Err(err).Msg("guard: failed to open self process handle, measurements will read zero")
	}

	cpuSampler := newCgroupCPUSampler()
	if cpuSampler != nil {
		logger.Info().
			Int("cgroup_version", cpuSampler.cgroupVersion).
			Float64("cpus_allocated", cpuSampler.numCPUsAllocated).
			Str("cgroup_path", cpuSampler.cgroupPath).
			Msg("guard: using container-aware CPU measurement")
	} else {
		logger.Info().Msg("guard: cgroup CPU accounting unavailable, falling back to host-wide CPU measurement")
	}

	g := &Guard{config: config, logger: logger, proc: proc, cpuSampler: cpuSampler}
	g.currentCPU.Store(0.0)
	g.currentMemory.Store(int64(0))
	return g
}

// Sample refreshes the guard's view of CPU and memory usage. Call
// periodically (e.g. on config.MetricsInterval) from the simulation loop.
func (g *Guard) Sample() {
	if g.cpuSampler != nil {
		if percent, ok := g.cpuSampler.percent(); ok {
			g.currentCPU.Store(percent)
		}
	} else if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		g.currentCPU.Store(percents[0])
	}

	if g.proc != nil {
		if memInfo, err := g.proc.MemoryInfo(); err == nil {
			g.currentMemory.Store(int64(memInfo.RSS))
		}
	}
}

// ShouldAcceptSession reports whether a new session may be admitted given
// the current session count and the guard's last sample.
func (g *Guard) ShouldAcceptSession(currentSessions int) (accept bool, reason string) {
	cpuPercent := g.currentCPU.Load().(float64)
	memBytes := g.currentMemory.Load().(int64)

	if currentSessions >= g.config.MaxSessions {
		metrics.SessionsRejected.WithLabelValues("max_sessions").Inc()
		return false, "at max sessions"
	}
	if cpuPercent > g.config.CPURejectThreshold {
		metrics.SessionsRejected.WithLabelValues("cpu").Inc()
		return false, "CPU over threshold"
	}
	if g.config.MemoryRejectBytes > 0 && memBytes > g.config.MemoryRejectBytes {
		metrics.SessionsRejected.WithLabelValues("memory").Inc()
		return false, "memory over threshold"
	}
	return true, "OK"
}

// CurrentCPU returns the last sampled CPU percentage.
func (g *Guard) CurrentCPU() float64 { return g.currentCPU.Load().(float64) }

// CurrentMemory returns the last sampled resident memory, in bytes.
func (g *Guard) CurrentMemory() int64 { return g.currentMemory.Load().(int64) }
