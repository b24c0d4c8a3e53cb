package sysinfo

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const defaultCPUWindow = time.Second

type CPU struct {
	Percent float64 `json:"percent"`
	Count   int     `json:"count"`
}

type Memory struct {
	Total     uint64  `json:"total"`
	Available uint64  `json:"available"`
	Used      uint64  `json:"used"`
	Percent   float64 `json:"percent"`
}

type Disk struct {
	Path    string  `json:"path"`
	Total   uint64  `json:"total"`
	Used    uint64  `json:"used"`
	Free    uint64  `json:"free"`
	Percent float64 `json:"percent"`
}

type Snapshot struct {
	CPU               CPU       `json:"cpu"`
	Memory            Memory    `json:"memory"`
	Disk              Disk      `json:"disk"`
	HostUptimeSeconds uint64    `json:"host_uptime_seconds"`
	CollectedAt       time.Time `json:"collected_at"`
}

type Collector interface {
	Collect(ctx context.Context) (Snapshot, error)
}

// HostCollector reads live figures through gopsutil.
type HostCollector struct {
	DiskPath  string
	CPUWindow time.Duration
	Now       func() time.Time
}

func NewHostCollector(diskPath string) *HostCollector {
	return &HostCollector{DiskPath: diskPath, CPUWindow: defaultCPUWindow, Now: time.Now}
}

func (c *HostCollector) Collect(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	pct, err := cpu.PercentWithContext(ctx, c.CPUWindow, false)
	if err != nil {
		return snap, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) > 0 {
		snap.CPU.Percent = round2(pct[0])
	}
	if snap.CPU.Count, err = cpu.CountsWithContext(ctx, true); err != nil {
		return snap, fmt.Errorf("cpu count: %w", err)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return snap, fmt.Errorf("virtual memory: %w", err)
	}
	snap.Memory = Memory{Total: vm.Total, Available: vm.Available, Used: vm.Used, Percent: round2(vm.UsedPercent)}

	du, err := disk.UsageWithContext(ctx, c.DiskPath)
	if err != nil {
		return snap, fmt.Errorf("disk usage %s: %w", c.DiskPath, err)
	}
	snap.Disk = Disk{Path: c.DiskPath, Total: du.Total, Used: du.Used, Free: du.Free, Percent: round2(du.UsedPercent)}

	if snap.HostUptimeSeconds, err = host.UptimeWithContext(ctx); err != nil {
		return snap, fmt.Errorf("host uptime: %w", err)
	}

	snap.CollectedAt = c.Now().UTC()
	return snap, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
