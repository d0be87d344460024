package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/go-threadpool/threadpool/pool"
)

type demoJob struct {
	name string
}

var jobKinds = []string{
	"DataProcessing", "EmailSend", "ReportGen", "BackupTask",
	"CacheRefresh", "LogAnalysis", "FileUpload", "ImageProcess",
}

func generateJobs(count int) []demoJob {
	jobs := make([]demoJob, count)
	for i := range jobs {
		jobs[i] = demoJob{
			name: fmt.Sprintf("%s_%d", jobKinds[rand.Intn(len(jobKinds))], i+1),
		}
	}
	return jobs
}

func newRunCmd() *cobra.Command {
	var workers int
	var tasks int
	var idleTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a batch of synthetic jobs and report placement/latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(workers, tasks, idleTimeout)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 4, "worker roster size")
	cmd.Flags().IntVar(&tasks, "tasks", 500, "number of synthetic jobs to submit")
	cmd.Flags().DurationVar(&idleTimeout, "idle-timeout", 2*time.Second, "worker idle-reclamation timeout")

	return cmd
}

type jobResult struct {
	worker  int
	name    string
	latency time.Duration
}

func runDemo(workers, tasks int, idleTimeout time.Duration) error {
	statusColor := color.New(color.FgCyan, color.Bold)
	_, _ = statusColor.Printf("starting pool %q: %d workers, idle timeout %s\n", "demo", workers, idleTimeout)

	p := pool.New("demo", workers, idleTimeout)
	defer p.Shutdown()

	jobs := generateJobs(tasks)
	fns := make([]func(context.Context) (jobResult, error), len(jobs))
	for i, j := range jobs {
		j := j
		fns[i] = func(ctx context.Context) (jobResult, error) {
			start := time.Now()
			time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
			idx, _ := pool.WorkerIndex(ctx)
			return jobResult{worker: idx, name: j.name, latency: time.Since(start)}, nil
		}
	}

	bar := progressbar.NewOptions(len(fns),
		progressbar.OptionSetDescription("submitting jobs"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	results, err := pool.BulkSubmit(p, context.Background(), fns)
	if err != nil {
		return err
	}

	counts := make(map[int]int)
	var totalLatency time.Duration
	var slowest jobResult
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(results))
	for _, r := range results {
		r := r
		go func() {
			defer wg.Done()
			v, err := r.Get(context.Background())
			_ = bar.Add(1)
			if err != nil {
				_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "job failed: %v\n", err)
				return
			}
			mu.Lock()
			counts[v.worker]++
			totalLatency += v.latency
			if v.latency > slowest.latency {
				slowest = v
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	_ = bar.Finish()

	renderDistribution(counts, len(jobs))

	green := color.New(color.FgGreen, color.Bold)
	_, _ = green.Printf("completed %d jobs across %d observed OS threads, avg latency %s\n",
		len(jobs), p.ObservedThreadCount(), totalLatency/time.Duration(len(jobs)))
	if slowest.name != "" {
		_, _ = green.Printf("slowest job: %s (worker %d, %s)\n", slowest.name, slowest.worker, slowest.latency)
	}
	return nil
}

func renderDistribution(counts map[int]int, total int) {
	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Worker", "Jobs Run", "Share")
	for _, idx := range indices {
		n := counts[idx]
		share := 100 * float64(n) / float64(total)
		_ = table.Append(fmt.Sprintf("%d", idx), fmt.Sprintf("%d", n), fmt.Sprintf("%.1f%%", share))
	}
	_ = table.Render()
}
