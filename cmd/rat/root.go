package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Desperadko/rat-prototype/internal/config"
	"github.com/Desperadko/rat-prototype/internal/report"
	"github.com/Desperadko/rat-prototype/internal/stats"
	"github.com/Desperadko/rat-prototype/pkg/rat"
)

// run executes the command line and returns the process exit code.
func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	if argv == nil {
		argv = []string{}
	}
	root := rootCommand(stdout, stderr)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func rootCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.Default()
	var (
		progress bool
		summary  bool
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "rat <sequence type> <recombinant file> <parent 1 file> <parent 2 file> [threads] [window] [step]",
		Short: "Recombination analysis by sliding-window local alignment",
		Long: `rat compares a recombinant sequence against two parent sequences.

Every window of the recombinant is aligned (Smith-Waterman, NUC4.4 scores,
linear gap penalty) against both parents; windows are labelled with the
closer parent and a recombination verdict (No, Possibly, Yes).

` + config.Usage,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := config.FromArgs(cfg, args)
			if err != nil {
				return err
			}
			return scanCmd(cmd.Context(), parsed, scanFlags{
				progress: progress,
				summary:  summary,
				log:      newLogger(stderr, verbose),
			}, stdout, stderr)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.Flags().StringVarP(&cfg.Format, "format", "f", config.FormatText, "Output format: text or json")
	cmd.Flags().BoolVarP(&cfg.Stream, "stream", "s", false, "Carry classifier history across chunk boundaries")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", config.DefaultTimeout, "Abort the scan after this long")
	cmd.Flags().IntVarP(&cfg.GapPenalty, "gap-penalty", "g", config.DefaultGapPenalty, "Linear gap penalty")
	cmd.Flags().BoolVarP(&progress, "progress", "p", false, "Show a progress bar on stderr")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a run summary after the results")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")

	cmd.AddCommand(alignCommand(stdout))
	cmd.AddCommand(statsCommand(stdout))
	cmd.AddCommand(versionCommand(stdout))
	return cmd
}

type scanFlags struct {
	progress bool
	summary  bool
	log      *slog.Logger
}

func scanCmd(ctx context.Context, cfg config.Config, flags scanFlags, stdout, stderr io.Writer) error {
	started := time.Now()

	rec, err := rat.LoadFASTA(cfg.RecombinantPath, cfg.SeqType)
	if err != nil {
		return err
	}
	p1, err := rat.LoadFASTA(cfg.Parent1Path, cfg.SeqType)
	if err != nil {
		return err
	}
	p2, err := rat.LoadFASTA(cfg.Parent2Path, cfg.SeqType)
	if err != nil {
		return err
	}

	flags.log.Debug("sequences loaded",
		"type", cfg.SeqType.String(),
		"recombinant", humanize.Comma(int64(rec.Len())),
		"parent1", humanize.Comma(int64(p1.Len())),
		"parent2", humanize.Comma(int64(p2.Len())))

	opts := rat.Options{
		Threads:    cfg.Threads,
		Window:     cfg.Window,
		Step:       cfg.Step,
		GapPenalty: cfg.GapPenalty,
		Timeout:    cfg.Timeout,
		Stream:     cfg.Stream,
		Logger:     flags.log,
	}

	var bar *pb.ProgressBar
	if flags.progress {
		bar = pb.Full.New(rat.WindowCount(rec.Len(), cfg.Window, cfg.Step)).SetWriter(stderr).Start()
		opts.Progress = func(n int) { bar.Add(n) }
	}

	analysis, err := rat.Analyze(ctx, rec, p1, p2, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	w, err := report.New(cfg.Format, stdout, analysis.RunID)
	if err != nil {
		return err
	}
	if err := w.WriteResults(analysis.Results); err != nil {
		return err
	}
	if err := w.WriteElapsed(time.Since(started)); err != nil {
		return err
	}
	if flags.summary {
		if err := w.WriteSummary(analysis.Summary()); err != nil {
			return err
		}
	}

	flags.log.Debug("run complete",
		"run_id", analysis.RunID,
		"windows", humanize.Comma(int64(analysis.Windows)),
		"elapsed", time.Since(started))
	return w.Flush()
}

func alignCommand(stdout io.Writer) *cobra.Command {
	var gapPenalty int

	cmd := &cobra.Command{
		Use:   "align <sequence type> <file 1> <file 2>",
		Short: "Locally align the first records of two FASTA files",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rat.ParseType(args[0])
			if err != nil {
				return err
			}
			seq1, err := rat.LoadFASTA(args[1], t)
			if err != nil {
				return err
			}
			seq2, err := rat.LoadFASTA(args[2], t)
			if err != nil {
				return err
			}

			aln, err := rat.Align(seq1, seq2, gapPenalty)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, aln.Format())
			fmt.Fprintf(stdout, "CIGAR: %s\n", aln.ToCIGAR())
			return nil
		},
	}
	cmd.Flags().IntVarP(&gapPenalty, "gap-penalty", "g", config.DefaultGapPenalty, "Linear gap penalty")
	return cmd
}

func statsCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <sequence type> <file>...",
		Short: "Print composition statistics of FASTA files",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := rat.ParseType(args[0])
			if err != nil {
				return err
			}
			for _, path := range args[1:] {
				seq, err := rat.LoadFASTA(path, t)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "%s\n%s\n", path, stats.FromSequence(seq))
			}
			return nil
		},
	}
}

func versionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "rat version %s\n", version)
			fmt.Fprintf(stdout, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(stdout, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
