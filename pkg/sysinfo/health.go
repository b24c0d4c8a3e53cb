package sysinfo

const (
	StatusHealthy   = "healthy"
	StatusWarning   = "warning"
	StatusUnhealthy = "unhealthy"

	WarnMemory = "High memory usage"
	WarnDisk   = "High disk usage"
)

type Thresholds struct {
	MemoryPercent float64
	DiskPercent   float64
}

type Health struct {
	Status   string
	Warnings []string
}

func (h Health) OK() bool { return h.Status == StatusHealthy }

// Evaluate flags usage strictly above a threshold.
func Evaluate(s Snapshot, t Thresholds) Health {
	h := Health{Status: StatusHealthy}
	if s.Memory.Percent > t.MemoryPercent {
		h.Warnings = append(h.Warnings, WarnMemory)
	}
	if s.Disk.Percent > t.DiskPercent {
		h.Warnings = append(h.Warnings, WarnDisk)
	}
	if len(h.Warnings) > 0 {
		h.Status = StatusWarning
	}
	return h
}
