package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sessionFor(cpus int, impl string, throughputFloor int64) FullReport {
	var benchmarks []BenchmarkResult
	for _, concurrency := range []int{2, 10, 50} {
		benchmarks = append(benchmarks, BenchmarkResult{
			Implementation:      impl,
			NumProducers:        concurrency,
			NumConsumers:        concurrency,
			NumMessages:         throughputFloor * int64(concurrency),
			NumMessagesConsumed: throughputFloor * int64(concurrency),
			ActualElapsed:       "1s",
			Throughput:          float64(throughputFloor * int64(concurrency)),
		})
	}
	return FullReport{
		SessionTime: "2026-01-01T00:00:00Z",
		SystemInfo: SystemInfo{
			NumCPU:            cpus,
			SimulatedCPUCount: cpus,
		},
		Benchmarks: benchmarks,
	}
}

// TestBuildGraphsWritesOnePNGPerCPUGroup exercises all five disciplines
// this repo actually benchmarks, across two simulated CPU counts, and
// checks a PNG lands on disk for each group.
func TestBuildGraphsWritesOnePNGPerCPUGroup(t *testing.T) {
	dir := t.TempDir()
	outputPrefix := filepath.Join(dir, "graph")

	disciplines := []string{"ChannelQueue", "MutexQueue", "SchedLockQueue", "SpinQueue", "InterruptQueue"}
	var sessions []FullReport
	for _, cpus := range []int{1, 4} {
		for i, impl := range disciplines {
			sessions = append(sessions, sessionFor(cpus, impl, int64(1000*(i+1))))
		}
	}

	written, err := buildGraphs(sessions, outputPrefix)
	require.NoError(t, err)
	require.Len(t, written, 2)

	seenCPUs := map[int]bool{}
	for _, w := range written {
		seenCPUs[w.cpus] = true
		info, err := os.Stat(w.filename)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
	require.True(t, seenCPUs[1])
	require.True(t, seenCPUs[4])
}

func TestLegendLabelKnowsAllFiveDisciplines(t *testing.T) {
	for _, impl := range []string{"ChannelQueue", "MutexQueue", "SchedLockQueue", "SpinQueue", "InterruptQueue"} {
		require.NotEqual(t, impl, legendLabel(impl), "discipline %s has no descriptive legend label", impl)
	}
}

func TestLegendLabelFallsBackForUnknownImplementation(t *testing.T) {
	require.Equal(t, "SomeFutureQueue", legendLabel("SomeFutureQueue"))
}

func TestBuildGraphsSkipsSamplesWithNoConsumedMessages(t *testing.T) {
	dir := t.TempDir()
	outputPrefix := filepath.Join(dir, "graph")

	sessions := []FullReport{{
		SystemInfo: SystemInfo{SimulatedCPUCount: 2},
		Benchmarks: []BenchmarkResult{
			{Implementation: "MutexQueue", NumProducers: 1, NumConsumers: 1, ActualElapsed: "1s", NumMessagesConsumed: 0},
		},
	}}

	written, err := buildGraphs(sessions, outputPrefix)
	require.NoError(t, err)
	require.Len(t, written, 1)
}
