package miniasync

import (
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// LatencyBuckets are the histogram boundaries, in nanoseconds, logarithmic
// from 1us to 10s.
var LatencyBuckets = []uint64{
	1_000,
	10_000,
	100_000,
	1_000_000,
	10_000_000,
	100_000_000,
	1_000_000_000,
	10_000_000_000,
}

const numLatencyBuckets = 8

// Metrics tracks per-VDM operation counts, throughput, and latency. A
// single Metrics instance is meant to be shared across every operation a
// VDM submits; all fields are updated lock-free via atomics so recording
// never contends with the worker goroutines doing the actual copies.
type Metrics struct {
	MemcpyOps   atomic.Uint64
	MemmoveOps  atomic.Uint64
	MemsetOps   atomic.Uint64
	FailedOps   atomic.Uint64
	BytesMoved  atomic.Uint64

	TotalLatencyNs atomic.Uint64
	OpCount        atomic.Uint64
	LatencyBuckets [numLatencyBuckets]atomic.Uint64

	StartTime atomic.Int64
}

// NewMetrics creates a Metrics with StartTime set to now.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordOp records one completed operation of type t, moving n bytes in
// latencyNs, with the given result.
func (m *Metrics) RecordOp(t OperationType, n int, latencyNs uint64, result Result) {
	switch t {
	case OpMemcpy:
		m.MemcpyOps.Add(1)
	case OpMemmove:
		m.MemmoveOps.Add(1)
	case OpMemset:
		m.MemsetOps.Add(1)
	}
	if result == ResultSuccess {
		m.BytesMoved.Add(uint64(n))
	} else {
		m.FailedOps.Add(1)
	}
	m.recordLatency(latencyNs)
}

func (m *Metrics) recordLatency(latencyNs uint64) {
	m.TotalLatencyNs.Add(latencyNs)
	m.OpCount.Add(1)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.LatencyBuckets[i].Add(1)
		}
	}
}

// MetricsSnapshot is a point-in-time, plain-data copy of a Metrics, safe to
// serialize or compare.
type MetricsSnapshot struct {
	MemcpyOps  uint64 `json:"memcpy_ops"`
	MemmoveOps uint64 `json:"memmove_ops"`
	MemsetOps  uint64 `json:"memset_ops"`
	FailedOps  uint64 `json:"failed_ops"`
	BytesMoved uint64 `json:"bytes_moved"`

	AvgLatencyNs     uint64                    `json:"avg_latency_ns"`
	UptimeNs         uint64                    `json:"uptime_ns"`
	TotalOps         uint64                    `json:"total_ops"`
	LatencyHistogram [numLatencyBuckets]uint64 `json:"latency_histogram"`
}

// Snapshot takes a consistent-enough point-in-time copy of m. Individual
// atomics are read independently, so under concurrent updates the snapshot
// may be a blend of states a few nanoseconds apart; that's acceptable for
// monitoring and diagnostics, the purpose this exists for.
func (m *Metrics) Snapshot() MetricsSnapshot {
	memcpy := m.MemcpyOps.Load()
	memmove := m.MemmoveOps.Load()
	memset := m.MemsetOps.Load()
	total := memcpy + memmove + memset

	opCount := m.OpCount.Load()
	var avg uint64
	if opCount > 0 {
		avg = m.TotalLatencyNs.Load() / opCount
	}

	snap := MetricsSnapshot{
		MemcpyOps:    memcpy,
		MemmoveOps:   memmove,
		MemsetOps:    memset,
		FailedOps:    m.FailedOps.Load(),
		BytesMoved:   m.BytesMoved.Load(),
		AvgLatencyNs: avg,
		TotalOps:     total,
		UptimeNs:     uint64(time.Now().UnixNano() - m.StartTime.Load()),
	}
	for i := range m.LatencyBuckets {
		snap.LatencyHistogram[i] = m.LatencyBuckets[i].Load()
	}
	return snap
}

// JSON serializes the snapshot with jsoniter, which the jsoniter-is-a-drop-in-
// -for-encoding/json config (ConfigCompatibleWithStandardLibrary) keeps
// struct-tag-compatible with ordinary encoding/json consumers.
func (s MetricsSnapshot) JSON() (string, error) {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
