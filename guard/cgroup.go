package guard

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// DetectMemoryLimit reads the container memory limit from the cgroup
// filesystem, trying cgroup v2 first and falling back to v1. Returns 0
// (unlimited/undetected) on bare metal, VMs, or non-Linux hosts.
func DetectMemoryLimit() int64 {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		limitStr := strings.TrimSpace(string(data))
		if limitStr != "max" {
			if limit, err := strconv.ParseInt(limitStr, 10, 64); err == nil {
				return limit
			}
		}
	}

	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		if limit, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
			return limit
		}
	}

	return 0
}

// CalculateMaxSessions derives a safe MaxSessions bound from a cgroup
// memory limit, reserving headroom for runtime overhead. A session here
// is a postal.Session (PostBox + ServerCommandBuffer, no replay buffer),
// far lighter than the teacher's buffered WebSocket connection, so the
// per-session budget is scaled down accordingly.
func CalculateMaxSessions(memoryLimitBytes int64) int {
	if memoryLimitBytes == 0 {
		return 10000
	}

	const runtimeOverheadBytes = 64 * 1024 * 1024
	const bytesPerSession = 16 * 1024

	available := memoryLimitBytes - runtimeOverheadBytes
	if available < 0 {
		available = memoryLimitBytes / 2
	}

	maxSessions := int(available / bytesPerSession)
	if maxSessions < 100 {
		maxSessions = 100
	}
	if maxSessions > 50000 {
		maxSessions = 50000
	}
	return maxSessions
}

// cgroupCPUSampler turns successive cumulative cgroup CPU-usage reads
// into a percentage relative to the container's allocated CPU quota, so
// CPURejectThreshold means "percent of what this container is actually
// entitled to" rather than "percent of the host". Adapted from
// ws/internal/single/platform/cgroup_cpu.go's ContainerCPU.
type cgroupCPUSampler struct {
	cgroupPath       string
	cgroupVersion    int // 1 or 2
	numCPUsAllocated float64
	lastUsageUsec    uint64
	lastSampleTime   time.Time
}

// newCgroupCPUSampler detects the calling process's cgroup and CPU quota.
// Returns nil if cgroup CPU accounting isn't available (non-Linux, bare
// metal, unmounted cgroupfs), in which case the caller falls back to
// gopsutil's host-wide cpu.Percent.
func newCgroupCPUSampler() *cgroupCPUSampler {
	path, version, err := detectCgroupCPUPath()
	if err != nil {
		return nil
	}

	quota, period, err := readCPUQuota(path, version)
	if err != nil {
		return nil
	}

	allocated := float64(runtime.NumCPU())
	if quota > 0 && period > 0 {
		allocated = float64(quota) / float64(period)
	}

	usage, err := readCPUUsageUsec(path, version)
	if err != nil {
		return nil
	}

	return &cgroupCPUSampler{
		cgroupPath:       path,
		cgroupVersion:    version,
		numCPUsAllocated: allocated,
		lastUsageUsec:    usage,
		lastSampleTime:   time.Now(),
	}
}

// percent reports CPU usage since the previous call as a percentage of
// numCPUsAllocated (can exceed 100 if the container bursts above its
// quota between samples). ok is false if the cgroup files became
// unreadable or the sampler was called twice within the same instant.
func (s *cgroupCPUSampler) percent() (percent float64, ok bool) {
	now := time.Now()
	usage, err := readCPUUsageUsec(s.cgroupPath, s.cgroupVersion)
	if err != nil {
		return 0, false
	}

	elapsedUsec := now.Sub(s.lastSampleTime).Microseconds()
	if elapsedUsec <= 0 {
		return 0, false
	}

	usageDelta := usage - s.lastUsageUsec
	s.lastUsageUsec = usage
	s.lastSampleTime = now

	rawPercent := (float64(usageDelta) / float64(elapsedUsec)) * 100.0
	return rawPercent / s.numCPUsAllocated, true
}

// detectCgroupCPUPath mirrors detectCgroupPath in the teacher source,
// reading /proc/self/cgroup to locate the cpu controller's mount.
func detectCgroupCPUPath() (path string, version int, err error) {
	file, err := os.Open("/proc/self/cgroup")
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 3)
		if len(parts) != 3 {
			continue
		}

		// cgroup v2: hierarchy-ID 0, empty controller list.
		if parts[0] == "0" && parts[1] == "" {
			return "/sys/fs/cgroup" + parts[2], 2, nil
		}
		if strings.Contains(parts[1], "cpu") {
			return "/sys/fs/cgroup/cpu" + parts[2], 1, nil
		}
	}

	return "", 0, fmt.Errorf("guard: could not detect cgroup cpu path")
}

func readCPUQuota(cgroupPath string, version int) (quota, period int64, err error) {
	if version == 2 {
		data, err := os.ReadFile(cgroupPath + "/cpu.max")
		if err != nil {
			return 0, 0, err
		}

		fields := strings.Fields(string(data))
		if len(fields) != 2 {
			return 0, 0, fmt.Errorf("guard: unexpected cpu.max format: %s", data)
		}
		if fields[0] == "max" {
			return -1, 0, nil
		}

		quota, err = strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return 0, 0, err
		}
		period, err = strconv.ParseInt(fields[1], 10, 64)
		return quota, period, err
	}

	quotaData, err := os.ReadFile(cgroupPath + "/cpu.cfs_quota_us")
	if err != nil {
		return 0, 0, err
	}
	periodData, err := os.ReadFile(cgroupPath + "/cpu.cfs_period_us")
	if err != nil {
		return 0, 0, err
	}

	quota, err = strconv.ParseInt(strings.TrimSpace(string(quotaData)), 10, 64)
	if err != nil {
		return 0, 0, err
	}
	period, err = strconv.ParseInt(strings.TrimSpace(string(periodData)), 10, 64)
	return quota, period, err
}

func readCPUUsageUsec(cgroupPath string, version int) (uint64, error) {
	if version == 2 {
		file, err := os.Open(cgroupPath + "/cpu.stat")
		if err != nil {
			return 0, err
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, "usage_usec ") {
				fields := strings.Fields(line)
				if len(fields) == 2 {
					return strconv.ParseUint(fields[1], 10, 64)
				}
			}
		}
		return 0, fmt.Errorf("guard: usage_usec not found in cpu.stat")
	}

	data, err := os.ReadFile(cgroupPath + "/cpuacct.usage")
	if err != nil {
		return 0, err
	}

	nsec, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, err
	}
	return nsec / 1000, nil
}
