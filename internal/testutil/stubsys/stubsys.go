package stubsys

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sambigeara/permcalc/pkg/sysinfo"
)

// Collector returns a fixed snapshot, or Err when set.
type Collector struct {
	mu    sync.Mutex
	snap  sysinfo.Snapshot
	err   error
	calls atomic.Int64
}

func New(snap sysinfo.Snapshot) *Collector {
	return &Collector{snap: snap}
}

// Healthy is a snapshot well under any sensible threshold.
func Healthy() sysinfo.Snapshot {
	return sysinfo.Snapshot{
		CPU:               sysinfo.CPU{Percent: 12.5, Count: 8},
		Memory:            sysinfo.Memory{Total: 16 << 30, Available: 12 << 30, Used: 4 << 30, Percent: 25},
		Disk:              sysinfo.Disk{Path: "/", Total: 100 << 30, Used: 40 << 30, Free: 60 << 30, Percent: 40},
		HostUptimeSeconds: 3600,
		CollectedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (c *Collector) Set(snap sysinfo.Snapshot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap, c.err = snap, err
}

func (c *Collector) Collect(context.Context) (sysinfo.Snapshot, error) {
	c.calls.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap, c.err
}

func (c *Collector) Calls() int64 { return c.calls.Load() }
