package stats_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-backup/pkg/stats"
)

func TestDumpPrometheusDefaults(t *testing.T) {
	before := testutil.ToFloat64(stats.ExportFailures)
	stats.ExportFailures.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(stats.ExportFailures))

	stats.BackupOutcomes.WithLabelValues(stats.OutcomeSucceeded, "seed").Inc()

	path := filepath.Join(t.TempDir(), "stats")
	require.NoError(t, stats.DumpPrometheusDefaults(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(content), "tdexbackup_export_failures_total"))
	require.True(t, strings.Contains(string(content), "tdexbackup_backup_outcomes_total"))
}

func TestEnableMemoryStatistics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats")
	ctx, cancel := context.WithCancel(context.Background())

	done := stats.EnableMemoryStatistics(ctx, 10*time.Millisecond, path)
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stats were not dumped")
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "tdexbackup_export_failures_total")
}
