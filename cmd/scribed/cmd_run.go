package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scribed/internal/analyzer"
	"scribed/internal/metrics"
	"scribed/internal/queue"
	"scribed/internal/runner"
	"scribed/internal/store"
	"scribed/internal/watch"
)

var workersFlag int

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the worker loop",
	Long: `Run claims transcripts from the input directory and processes them
until interrupted. SIGINT/SIGTERM stops the loop from claiming new
transcripts; any in-flight cycle completes and releases its claim
before the process exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWorkers(ctx)
	},
}

func init() {
	runCmd.Flags().IntVar(&workersFlag, "workers", 0, "number of concurrent worker loops (default from config)")
}

func runWorkers(ctx context.Context) error {
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	q := queue.NewDirQueue(cfg.Paths.InputDir, logger)
	if orphans := q.Orphans(); len(orphans) > 0 {
		// A previous worker died between claim and release. scribed does
		// not reclaim these automatically; the right lease policy is an
		// operator decision.
		logger.Warn("found orphaned claim markers, manual recovery required",
			zap.Strings("markers", orphans))
	}

	ledger, err := metrics.NewLedger(cfg.Paths.LedgerFile)
	if err != nil {
		return err
	}

	var history *store.HistoryStore
	if cfg.Paths.HistoryDB != "" {
		history, err = store.NewHistoryStore(cfg.Paths.HistoryDB)
		if err != nil {
			logger.Warn("job history store unavailable, continuing without it", zap.Error(err))
			history = nil
		} else {
			defer history.Close()
		}
	}

	gemini := analyzer.NewGeminiClient(analyzer.GeminiConfig{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.GetLLMTimeout(),
	}, logger)
	r := runner.New(q, analyzer.New(gemini, logger), ledger, history, cfg.Paths.OutputDir, logger)

	var wake <-chan struct{}
	watcher, err := watch.NewWatcher(cfg.Paths.InputDir, logger)
	if err != nil {
		logger.Warn("input watcher unavailable, polling only", zap.Error(err))
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("input watcher failed to start, polling only", zap.Error(err))
		watcher.Stop()
	} else {
		wake = watcher.Wake()
		defer watcher.Stop()
	}

	workers := cfg.Worker.Workers
	if workersFlag > 0 {
		workers = workersFlag
	}

	logger.Info("scribed started",
		zap.String("input_dir", cfg.Paths.InputDir),
		zap.String("output_dir", cfg.Paths.OutputDir),
		zap.String("model", gemini.Model()),
		zap.Int("workers", workers))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		id := i
		g.Go(func() error {
			return workerLoop(ctx, id, r, q, wake)
		})
	}
	err = g.Wait()

	logger.Info("scribed stopped")
	return err
}

// workerLoop claims and processes transcripts until ctx is cancelled.
// Claiming stops at cancellation; an already-claimed transcript finishes
// its cycle under the service timeout so no claim marker is orphaned.
func workerLoop(ctx context.Context, id int, r *runner.Runner, q *queue.DirQueue, wake <-chan struct{}) error {
	workerLogger := logger.With(zap.Int("worker", id))
	pollInterval := cfg.GetPollInterval()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if id == 0 {
			if depth := q.Depth(); depth > 0 {
				workerLogger.Info("queue depth", zap.Int("pending", depth))
			}
		}

		processed, err := r.ProcessNext(context.WithoutCancel(ctx))
		if err != nil {
			workerLogger.Error("claim cycle failed", zap.Error(err))
		}
		if processed {
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-wake:
		case <-time.After(pollInterval):
		}
	}
}
