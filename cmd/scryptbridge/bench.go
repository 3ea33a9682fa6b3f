package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/TheMichaelB/scryptbridge/internal/dispatch"
	"github.com/TheMichaelB/scryptbridge/internal/metrics"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run concurrent derivations and report throughput",
	Long: `Bench submits --count derivations at once with the configured (or
flagged) parameters, waits for every outcome and reports the collected
metrics.`,
	Example: `  scryptbridge bench --count 32
  scryptbridge bench --count 8 --N 1024 --json`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

var (
	benchCount    int
	benchPassword string
	benchSalt     string
)

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVarP(&benchCount, "count", "c", 16,
		"Number of concurrent derivations")
	benchCmd.Flags().StringVar(&benchPassword, "password", "password",
		"Password text")
	benchCmd.Flags().StringVar(&benchSalt, "salt", "NaCl",
		"Salt text")
	benchCmd.Flags().IntVar(&deriveN, "N", 0, "CPU/memory cost (default from config)")
	benchCmd.Flags().IntVar(&deriveR, "r", 0, "Block size (default from config)")
	benchCmd.Flags().IntVar(&deriveP, "p", 0, "Parallelization (default from config)")
	benchCmd.Flags().IntVar(&deriveKeyLen, "dklen", 0, "Derived key length in bytes (default from config)")
}

type benchReport struct {
	Count       int            `json:"count"`
	Elapsed     string         `json:"elapsed"`
	PerSecond   float64        `json:"per_second"`
	Succeeded   int            `json:"succeeded"`
	Failed      map[string]int `json:"failed,omitempty"`
	MeanLatency string         `json:"mean_latency"`
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchCount <= 0 {
		return fmt.Errorf("--count must be positive, got %d", benchCount)
	}

	options := deriveOptions(cmd)
	ctx := cmd.Context()

	start := time.Now()
	results := make([]*dispatch.Result, benchCount)
	for i := range results {
		results[i] = service.DeriveRaw(ctx, benchPassword, benchSalt, options, nil)
	}

	for _, r := range results {
		if _, err := r.Wait(ctx); err != nil {
			return fmt.Errorf("wait for derivation: %w", err)
		}
	}
	elapsed := time.Since(start)

	report, err := gatherReport(cfg.Metrics.Namespace)
	if err != nil {
		return err
	}
	report.Count = benchCount
	report.Elapsed = elapsed.Round(time.Millisecond).String()
	report.PerSecond = float64(benchCount) / elapsed.Seconds()

	if jsonOutput {
		printJSON(report)
		return nil
	}

	printBenchReport(report)
	return nil
}

// gatherReport reads outcome counts and mean latency back from the registry.
func gatherReport(namespace string) (*benchReport, error) {
	families, err := registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	report := &benchReport{Failed: make(map[string]int)}
	for _, mf := range families {
		switch mf.GetName() {
		case namespace + "_derivations_completed_total":
			for _, m := range mf.GetMetric() {
				n := int(m.GetCounter().GetValue())
				if label(m, "result") == metrics.ResultSuccess {
					report.Succeeded += n
				} else {
					report.Failed[label(m, "kind")] += n
				}
			}
		case namespace + "_derivation_duration_seconds":
			var sum float64
			var count uint64
			for _, m := range mf.GetMetric() {
				sum += m.GetHistogram().GetSampleSum()
				count += m.GetHistogram().GetSampleCount()
			}
			if count > 0 {
				mean := time.Duration(sum / float64(count) * float64(time.Second))
				report.MeanLatency = mean.Round(time.Microsecond).String()
			}
		}
	}

	return report, nil
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func printBenchReport(r *benchReport) {
	bold := color.New(color.Bold)

	bold.Println("Scrypt benchmark")
	fmt.Printf("  Derivations:  %d\n", r.Count)
	fmt.Printf("  Elapsed:      %s\n", r.Elapsed)
	fmt.Printf("  Throughput:   %.2f/s\n", r.PerSecond)
	fmt.Printf("  Mean latency: %s\n", r.MeanLatency)

	if len(r.Failed) == 0 {
		printSuccess("%d succeeded", r.Succeeded)
		return
	}

	kinds := make([]string, 0, len(r.Failed))
	for k, n := range r.Failed {
		kinds = append(kinds, fmt.Sprintf("%s=%d", k, n))
	}
	sort.Strings(kinds)
	printWarning("%d succeeded, failed: %s", r.Succeeded, strings.Join(kinds, " "))
}
