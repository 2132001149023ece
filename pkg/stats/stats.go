package stats

import (
	"bufio"
	"context"
	"os"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	BYTE = 1 << (10 * iota)
	KILOBYTE
	MEGABYTE
	GIGABYTE
	TERABYTE
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

var (
	// BackupOutcomes counts the finished backup flows by outcome and method.
	BackupOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tdexbackup",
			Name:      "backup_outcomes_total",
			Help:      "Number of finished backup flows.",
		},
		[]string{"outcome", "method"},
	)
	// ExportFailures counts the failed private key export attempts.
	ExportFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tdexbackup",
			Name:      "export_failures_total",
			Help:      "Number of failed private key exports.",
		},
	)
	// ElevationsOffered counts the times the user has been asked to enable
	// the presence lock after a backup.
	ElevationsOffered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tdexbackup",
			Name:      "elevations_offered_total",
			Help:      "Number of security elevation prompts.",
		},
	)
)

func init() {
	prometheus.MustRegister(BackupOutcomes, ExportFailures, ElevationsOffered)
}

// EnableMemoryStatistics enables go routine that periodically prints memory
// usage of the go process. Once the context is done, the gathered metrics are
// dumped to the given file and the returned channel is closed.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, dumpPath string,
) <-chan struct{} {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				PrintMemoryStatistics()
				PrintNumOfRoutines()
			case <-ctx.Done():
				if err := DumpPrometheusDefaults(dumpPath); err != nil {
					log.WithError(err).Warn("failed to dump stats")
				}
				return
			}
		}
	}()

	return done
}

// toGigabytes returns given memory in bytes to gigabytes.
func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / GIGABYTE
}

// PrintMemoryStatistics prints memory statistics using go runtime library.
func PrintMemoryStatistics() {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	log.Debugf(
		"Total allocated: %.3fGB, Heap allocated: %.3fGB, "+
			"Allocated objects count: %v, Freed objects count: %v",
		toGigabytes(memStats.TotalAlloc),
		toGigabytes(memStats.HeapAlloc),
		memStats.Mallocs,
		memStats.Frees,
	)
}

// DumpPrometheusDefaults appends the metrics of the default Prometheus
// gatherer to the given file.
func DumpPrometheusDefaults(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	metricFamily, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, v := range metricFamily {
		if _, err := writer.WriteString(v.String() + "\n"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// PrintNumOfRoutines prints number of go routines currently running
func PrintNumOfRoutines() {
	log.Debugf("Num of go routines: %v", runtime.NumGoroutine())
}
