package sysinfo

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	jitterPercent = 0.1
	jitterScale   = 2
)

var ErrNoSample = errors.New("no system sample collected yet")

// Sampler keeps the most recent snapshot from a Collector so that readers
// never wait on CPU sampling. Refreshes run on a jittered period.
type Sampler struct {
	collector Collector
	interval  time.Duration
	log       *zap.Logger

	mu   sync.RWMutex
	last Snapshot
	err  error
}

func NewSampler(collector Collector, interval time.Duration, log *zap.Logger) *Sampler {
	return &Sampler{collector: collector, interval: interval, log: log, err: ErrNoSample}
}

// Refresh collects once and stores the outcome.
func (s *Sampler) Refresh(ctx context.Context) {
	snap, err := s.collector.Collect(ctx)
	if err != nil {
		s.log.Warn("system sample failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		return
	}
	s.last, s.err = snap, nil
}

// Latest returns the last good snapshot, or the error from the latest
// attempt if it failed.
func (s *Sampler) Latest() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.err
}

// Collect lets a Sampler stand in for a Collector.
func (s *Sampler) Collect(context.Context) (Snapshot, error) { return s.Latest() }

// Run refreshes immediately and then on every tick until ctx ends.
func (s *Sampler) Run(ctx context.Context) error {
	s.Refresh(ctx)

	timer := time.NewTimer(jitter(s.interval, jitterPercent))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			s.Refresh(ctx)
			timer.Reset(jitter(s.interval, jitterPercent))
		}
	}
}

func jitter(d time.Duration, percent float64) time.Duration {
	if percent <= 0 {
		return d
	}
	delta := time.Duration(float64(d) * percent)
	if delta <= 0 {
		return d
	}
	n := int64(delta)*jitterScale + 1
	offset := time.Duration(rand.N(n)) - delta //nolint:gosec
	return d + offset
}
