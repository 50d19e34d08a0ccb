package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/marcelo-6/mqtt-sim/internal/fileio"
	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/expand"
	"github.com/marcelo-6/mqtt-sim/pkg/logging"
	"github.com/marcelo-6/mqtt-sim/pkg/payload"
	"github.com/marcelo-6/mqtt-sim/pkg/publisher"
	"github.com/marcelo-6/mqtt-sim/pkg/reporter"
	"github.com/marcelo-6/mqtt-sim/pkg/rng"
	"github.com/marcelo-6/mqtt-sim/pkg/scheduler"
)

var (
	runConfigPath string
	runOutput     string
	runSeed       int64
	runHasSeed    bool
	runDuration   float64
	runFailFast   bool
	runKeepGoing  bool
	runVerbose    bool
	runLogFormat  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Publish configured MQTT traffic until stopped",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to the plan file (JSON or YAML)")
	runCmd.Flags().StringVar(&runOutput, "output", "auto", "status display: auto, table, or log")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "deterministic RNG seed (random if omitted)")
	runCmd.Flags().Float64Var(&runDuration, "duration", 0, "stop after this many seconds (runs until Ctrl-C if omitted)")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "cancel the whole run on the first stream failure")
	runCmd.Flags().BoolVar(&runKeepGoing, "keep-going", false, "keep other streams running after a stream failure (default)")
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "enable debug logging")
	runCmd.Flags().StringVar(&runLogFormat, "log-format", "text", "log encoding: text or json")
	rootCmd.AddCommand(runCmd)

	runCmd.PreRun = func(cmd *cobra.Command, args []string) {
		runHasSeed = cmd.Flags().Changed("seed")
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	if runConfigPath == "" {
		return fmt.Errorf("run: -c/--config is required")
	}
	if runFailFast && runKeepGoing {
		return fmt.Errorf("run: --fail-fast and --keep-going are mutually exclusive")
	}

	logWriter, err := fileio.OpenRotating(fileio.DefaultPath(), fileio.DefaultMaxBytes)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = logWriter.Close() }()

	level := logging.LevelInfo
	if runVerbose {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, Format: logging.ParseFormat(runLogFormat), Output: logWriter})

	plan, err := config.LoadFile(runConfigPath)
	if err != nil {
		return err
	}

	resolved, err := expand.Expand(plan)
	if err != nil {
		return err
	}

	var src *rng.Source
	if runHasSeed {
		src = rng.New(uint64(runSeed))
	} else {
		src = rng.NewFromPlatform()
	}

	for i := range resolved {
		builder, err := payload.New(resolved[i].Payload, src)
		if err != nil {
			return fmt.Errorf("stream %s: %w", resolved[i].ID, err)
		}
		resolved[i].Builder = builder
	}

	brokers := make(map[string]config.BrokerSpec, len(plan.Brokers))
	for _, b := range plan.Brokers {
		brokers[b.Name] = b
	}

	pool := publisher.NewPool()
	defer pool.CloseAll()

	policy := scheduler.KeepGoing
	if runFailFast {
		policy = scheduler.FailFast
	}
	sched := scheduler.New(pool, logger, policy)

	sink := chooseSink(runOutput, logger)
	rep := reporter.New(resolved, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if runDuration > 0 {
		go func() {
			select {
			case <-time.After(time.Duration(runDuration * float64(time.Second))):
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	reporterStop := make(chan struct{})
	reporterDone := make(chan struct{})
	go func() {
		rep.Run(reporterStop)
		close(reporterDone)
	}()

	failed := sched.Run(ctx, resolved, brokers, "mqttsim")

	close(reporterStop)
	<-reporterDone

	if failed && runFailFast {
		return errRuntimeFailure
	}
	return nil
}

func chooseSink(output string, logger *slog.Logger) reporter.Sink {
	switch output {
	case "table":
		return reporter.NewTableSink(os.Stdout)
	case "log":
		return reporter.NewLogSink(logger)
	default: // "auto"
		if isatty.IsTerminal(os.Stdout.Fd()) {
			return reporter.NewTableSink(os.Stdout)
		}
		return reporter.NewLogSink(logger)
	}
}
