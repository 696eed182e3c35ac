package flashgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    openCounter   prometheus.Counter
//	    readHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordOpen(duration time.Duration, err error) {
//	    p.openCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordOpen is called after each open attempt.
	// duration is the total time taken, err is nil if successful.
	RecordOpen(duration time.Duration, err error)

	// RecordRead is called after each read call.
	// n is the number of bytes transferred.
	RecordRead(n int, duration time.Duration, err error)

	// RecordWrite is called after each write call.
	// n is the number of bytes the medium accepted.
	RecordWrite(n int, duration time.Duration, err error)

	// RecordSeek is called after each seek, including position queries.
	RecordSeek(duration time.Duration, err error)

	// RecordSync is called after each explicit sync.
	RecordSync(duration time.Duration, err error)

	// RecordClose is called after each handle release.
	RecordClose(err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)       {}
func (NoopMetricsCollector) RecordRead(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordWrite(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSeek(time.Duration, error)       {}
func (NoopMetricsCollector) RecordSync(time.Duration, error)       {}
func (NoopMetricsCollector) RecordClose(error)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount      atomic.Int64
	OpenErrors     atomic.Int64
	OpenTotalNanos atomic.Int64
	ReadCount      atomic.Int64
	ReadErrors     atomic.Int64
	ReadBytes      atomic.Int64
	ReadTotalNanos atomic.Int64
	WriteCount     atomic.Int64
	WriteErrors    atomic.Int64
	WriteBytes     atomic.Int64
	SeekCount      atomic.Int64
	SeekErrors     atomic.Int64
	SyncCount      atomic.Int64
	SyncErrors     atomic.Int64
	CloseCount     atomic.Int64
	CloseErrors    atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	b.OpenTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(n int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(n))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(n int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(n))
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordSeek implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSeek(duration time.Duration, err error) {
	b.SeekCount.Add(1)
	if err != nil {
		b.SeekErrors.Add(1)
	}
}

// RecordSync implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSync(duration time.Duration, err error) {
	b.SyncCount.Add(1)
	if err != nil {
		b.SyncErrors.Add(1)
	}
}

// RecordClose implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClose(err error) {
	b.CloseCount.Add(1)
	if err != nil {
		b.CloseErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:    b.OpenCount.Load(),
		OpenErrors:   b.OpenErrors.Load(),
		OpenAvgNanos: b.getAvgOpenNanos(),
		ReadCount:    b.ReadCount.Load(),
		ReadErrors:   b.ReadErrors.Load(),
		ReadBytes:    b.ReadBytes.Load(),
		ReadAvgNanos: b.getAvgReadNanos(),
		WriteCount:   b.WriteCount.Load(),
		WriteErrors:  b.WriteErrors.Load(),
		WriteBytes:   b.WriteBytes.Load(),
		SeekCount:    b.SeekCount.Load(),
		SeekErrors:   b.SeekErrors.Load(),
		SyncCount:    b.SyncCount.Load(),
		SyncErrors:   b.SyncErrors.Load(),
		CloseCount:   b.CloseCount.Load(),
		CloseErrors:  b.CloseErrors.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgOpenNanos() int64 {
	count := b.OpenCount.Load()
	if count == 0 {
		return 0
	}
	return b.OpenTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgReadNanos() int64 {
	count := b.ReadCount.Load()
	if count == 0 {
		return 0
	}
	return b.ReadTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount    int64
	OpenErrors   int64
	OpenAvgNanos int64
	ReadCount    int64
	ReadErrors   int64
	ReadBytes    int64
	ReadAvgNanos int64
	WriteCount   int64
	WriteErrors  int64
	WriteBytes   int64
	SeekCount    int64
	SeekErrors   int64
	SyncCount    int64
	SyncErrors   int64
	CloseCount   int64
	CloseErrors  int64
}
