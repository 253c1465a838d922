package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/i5heu/rtqueue-bench/pkg/channelqueue"
	"github.com/i5heu/rtqueue-bench/pkg/config"
	"github.com/i5heu/rtqueue-bench/pkg/interruptqueue"
	"github.com/i5heu/rtqueue-bench/pkg/mutexqueue"
	"github.com/i5heu/rtqueue-bench/pkg/schedlockqueue"
	"github.com/i5heu/rtqueue-bench/pkg/spinqueue"

	"github.com/i5heu/rtqueue-bench/internal/testbench"
)

// BenchmarkResult holds results for one test run.
type BenchmarkResult struct {
	Implementation      string  `json:"implementation"`
	NumProducers        int     `json:"num_producers"`
	NumConsumers        int     `json:"num_consumers"`
	NumMessages         int64   `json:"num_messages"`
	NumMessagesConsumed int64   `json:"num_messages_consumed"`
	TestDuration        string  `json:"test_duration"`
	ActualElapsed       string  `json:"actual_elapsed"`
	Throughput          float64 `json:"throughput_msgs_sec"`
	Timestamp           int64   `json:"timestamp"`
	GoVersion           string  `json:"go_version"`
}

// SystemInfo holds system information gathered via gopsutil.
type SystemInfo struct {
	NumCPU            int     `json:"num_cpu"`
	TrueCPU           int     `json:"true_cpu,omitempty"`
	SimulatedCPUCount int     `json:"simulated_cpu_count,omitempty"`
	CPUModel          string  `json:"cpu_model,omitempty"`
	CPUSpeedMHz       float64 `json:"cpu_speed_mhz,omitempty"`
	GOARCH            string  `json:"go_arch"`
	TotalMemory       uint64  `json:"total_memory_bytes,omitempty"`
}

// FullReport represents a complete benchmark session at one GOMAXPROCS
// setting.
type FullReport struct {
	SessionTime string            `json:"session_time"`
	SystemInfo  SystemInfo        `json:"system_info"`
	Benchmarks  []BenchmarkResult `json:"benchmarks"`
}

// queueUnderTest is what getImplementations needs from every discipline:
// enough to satisfy internal/queue.QueueValidationInterface[*int].
type queueUnderTest interface {
	Enqueue(*int)
	Dequeue() (*int, bool)
	FreeSlots() uint64
	UsedSlots() uint64
}

// Implementation names one critical-section discipline entered into the
// benchmark matrix, and knows how to build a fresh queue for each run.
type Implementation struct {
	name        string
	pkgName     string
	discipline  string
	description string
	newQueue    func(capacity uint64) queueUnderTest
}

// getImplementations enumerates the critical-section disciplines entered
// into the benchmark matrix: one native-channel baseline plus every
// pluggable discipline pkg/fifoqueue exposes through its flavor packages.
func getImplementations() []Implementation {
	return []Implementation{
		{
			name:        "ChannelQueue",
			pkgName:     "channelqueue",
			discipline:  "native Go buffered channel (baseline)",
			description: "Reference baseline built on Go's own bounded, blocking channel.",
			newQueue: func(capacity uint64) queueUnderTest {
				return channelqueue.New[*int](capacity)
			},
		},
		{
			name:        "MutexQueue",
			pkgName:     "mutexqueue",
			discipline:  "two semaphores + dedicated mutex per side",
			description: "The spec's portable default critical-section discipline.",
			newQueue: func(capacity uint64) queueUnderTest {
				return mutexqueue.New[*int](capacity)
			},
		},
		{
			name:        "SchedLockQueue",
			pkgName:     "schedlockqueue",
			discipline:  "two semaphores + single shared lock",
			description: "Models one scheduler lock guarding both sides' critical sections.",
			newQueue: func(capacity uint64) queueUnderTest {
				return schedlockqueue.New[*int](capacity)
			},
		},
		{
			name:        "SpinQueue",
			pkgName:     "spinqueue",
			discipline:  "two semaphores + per-side CAS spinlock",
			description: "Models briefly masking interrupts on a single-core target.",
			newQueue: func(capacity uint64) queueUnderTest {
				return spinqueue.New[*int](capacity)
			},
		},
		{
			name:        "InterruptQueue",
			pkgName:     "interruptqueue",
			discipline:  "spinlock discipline, try-only ISR surface",
			description: "Safe to push into from an interrupt handler via PushFromISR.",
			newQueue: func(capacity uint64) queueUnderTest {
				return interruptqueue.New[*int](capacity)
			},
		},
	}
}

// outputMarkdownTable loads the JSON results file and prints a Markdown
// summary table of the most recent session, sorted by throughput.
func outputMarkdownTable(jsonFile string) {
	data, err := os.ReadFile(jsonFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading JSON file %q: %v\n", jsonFile, err)
		os.Exit(1)
	}
	var sessions []FullReport
	if err := json.Unmarshal(data, &sessions); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshalling JSON: %v\n", err)
		os.Exit(1)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(os.Stderr, "No sessions found in JSON.")
		os.Exit(1)
	}
	lastSession := sessions[len(sessions)-1]

	implMeta := make(map[string]Implementation)
	for _, impl := range getImplementations() {
		implMeta[impl.name] = impl
	}

	type tableRow struct {
		implementation string
		pkgName        string
		discipline     string
		throughput     float64
	}
	var rows []tableRow
	for _, bench := range lastSession.Benchmarks {
		meta := implMeta[bench.Implementation]
		rows = append(rows, tableRow{
			implementation: bench.Implementation,
			pkgName:        meta.pkgName,
			discipline:     meta.discipline,
			throughput:     bench.Throughput,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].throughput > rows[j].throughput })

	fmt.Println("## Last Session Benchmark Summary")
	fmt.Println()
	fmt.Println("| Implementation   | Package         | Discipline                          | Throughput (msgs/sec) |")
	fmt.Println("|------------------|-----------------|--------------------------------------|------------------------|")
	for _, r := range rows {
		fmt.Printf("| %-16s | %-15s | %-36s | %22.0f |\n",
			r.implementation, r.pkgName, r.discipline, r.throughput)
	}
}

// gatherSystemInfo collects CPU and memory details via gopsutil.
func gatherSystemInfo() SystemInfo {
	info := SystemInfo{
		NumCPU: runtime.NumCPU(),
		GOARCH: runtime.GOARCH,
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = infos[0].ModelName
		info.CPUSpeedMHz = infos[0].Mhz
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.TotalMemory = vm.Total
	}
	return info
}

func main() {
	testIterations := flag.Int("iter", 0, "Iterations per concurrency setting (0: use config default)")
	cpuOnly := flag.Int("cpu", 0, "If non-zero, test only this GOMAXPROCS value")
	jsonExport := flag.Bool("json", false, "Append results to test-results.json")
	highConcurrency := flag.Bool("high-concurrency", false, "Also sweep the high-concurrency matrix")
	markdownTable := flag.Bool("markdown-table", false, "Print a markdown table from an existing JSON file and exit")
	jsonFileForMarkdown := flag.String("jsonfile", "test-results.json", "JSON file to read for -markdown-table")
	configPath := flag.String("config", "", "YAML file overriding the built-in benchmark matrix")
	flag.Parse()

	if *markdownTable {
		outputMarkdownTable(*jsonFileForMarkdown)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *testIterations > 0 {
		cfg.Iterations = *testIterations
	}

	trueCPUCount := runtime.NumCPU()
	var cpuSettings []int
	if *cpuOnly > 0 {
		desired := *cpuOnly
		if desired > trueCPUCount {
			desired = trueCPUCount
		}
		cpuSettings = []int{desired}
	} else {
		for _, v := range cfg.CPUSettings {
			if v <= trueCPUCount {
				cpuSettings = append(cpuSettings, v)
			}
		}
	}

	concurrencyConfigs := cfg.Concurrency
	if *highConcurrency {
		concurrencyConfigs = append(concurrencyConfigs, cfg.HighConcurrency...)
	}

	testDuration := cfg.TestDuration()
	impls := getImplementations()
	totalTests := len(cpuSettings) * len(concurrencyConfigs) * cfg.Iterations * len(impls)

	bar := progressbar.NewOptions(totalTests,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("benchmarking"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
	)

	var allSessions []FullReport

	for _, cpus := range cpuSettings {
		runtime.GOMAXPROCS(cpus)

		sysInfo := gatherSystemInfo()
		sysInfo.NumCPU = cpus
		sysInfo.TrueCPU = trueCPUCount
		sysInfo.SimulatedCPUCount = cpus

		fmt.Printf("\n=============================\n")
		fmt.Printf("GOMAXPROCS = %d\n", cpus)
		fmt.Printf("=============================\n")

		var results []BenchmarkResult

		for _, qcfg := range concurrencyConfigs {
			fmt.Printf("  [concurrency: producers=%d consumers=%d]\n", qcfg.NumProducers, qcfg.NumConsumers)
			for iteration := 1; iteration <= cfg.Iterations; iteration++ {
				for _, impl := range impls {
					runtime.GC()
					q := impl.newQueue(cfg.QueueCapacity)
					time.Sleep(250 * time.Millisecond)

					produced, consumed, actualTime := testbench.RunTimedTest(
						q,
						qcfg,
						testDuration,
						func(i int) *int {
							v := i
							return &v
						},
					)
					throughput := float64(consumed) / actualTime.Seconds()

					bar.Add(1)

					results = append(results, BenchmarkResult{
						Implementation:      impl.name,
						NumProducers:        qcfg.NumProducers,
						NumConsumers:        qcfg.NumConsumers,
						NumMessages:         produced,
						NumMessagesConsumed: consumed,
						TestDuration:        testDuration.String(),
						ActualElapsed:       actualTime.String(),
						Throughput:          throughput,
						Timestamp:           time.Now().Unix(),
						GoVersion:           runtime.Version(),
					})
				}
			}
		}

		allSessions = append(allSessions, FullReport{
			SessionTime: time.Now().Format(time.RFC3339),
			SystemInfo:  sysInfo,
			Benchmarks:  results,
		})
	}

	fmt.Fprintln(os.Stderr)

	if *jsonExport {
		const filename = "test-results.json"
		var previous []FullReport
		if data, err := os.ReadFile(filename); err == nil && len(data) > 0 {
			json.Unmarshal(data, &previous)
		}
		updated := append(previous, allSessions...)
		data, err := json.MarshalIndent(updated, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error marshalling JSON:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(filename, data, 0644); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing JSON file:", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote results to %s\n", filename)
	}
}
