// Package config loads the benchmark matrix cmd/bench drives from a YAML
// file, replacing the hardcoded concurrency table that used to live
// directly in cmd/bench/main.go. This is bench-harness configuration, not
// target/board configuration — the latter stays out of scope per spec.md.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/i5heu/rtqueue-bench/internal/testbench"
)

// Concurrency is an alias for testbench.Config, kept so callers can import
// just pkg/config for the benchmark matrix without pulling in
// internal/testbench directly.
type Concurrency = testbench.Config

// BenchConfig describes one full run of cmd/bench: which CPU/vCPU counts
// to sweep, which producer/consumer concurrency levels to sweep at each,
// how long each iteration runs, and how many iterations to average.
type BenchConfig struct {
	Iterations       int           `yaml:"iterations"`
	CPUSettings      []int         `yaml:"cpu_settings"`
	Concurrency      []Concurrency `yaml:"concurrency"`
	HighConcurrency  []Concurrency `yaml:"high_concurrency"`
	TestDurationText string        `yaml:"test_duration"`
	QueueCapacity    uint64        `yaml:"queue_capacity"`
}

// Default returns the matrix cmd/bench used before pkg/config existed:
// three concurrency levels, five iterations, every common CPU count from 1
// to 512 (cmd/bench skips those above runtime.NumCPU()), a 5s test
// duration, and 1024-slot queues.
func Default() BenchConfig {
	return BenchConfig{
		Iterations: 5,
		CPUSettings: []int{
			1, 2, 3, 4, 6, 8, 12, 16, 32, 48, 56, 64, 96, 128, 192, 256, 384, 512,
		},
		Concurrency: []Concurrency{
			{NumProducers: 2, NumConsumers: 2},
			{NumProducers: 10, NumConsumers: 10},
			{NumProducers: 50, NumConsumers: 50},
		},
		HighConcurrency: []Concurrency{
			{NumProducers: 100, NumConsumers: 100},
			{NumProducers: 250, NumConsumers: 250},
			{NumProducers: 500, NumConsumers: 500},
		},
		TestDurationText: "5s",
		QueueCapacity:    1024,
	}
}

// Load reads and parses a BenchConfig from a YAML file at path.
func Load(path string) (BenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BenchConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return BenchConfig{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// TestDuration parses TestDurationText, falling back to 5s if it is empty
// or malformed.
func (c BenchConfig) TestDuration() time.Duration {
	if c.TestDurationText == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.TestDurationText)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
