package festctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/fest/internal/adapters/http/api"
	"github.com/okian/fest/pkg/logger"
)

const (
	defaultURL     = "http://localhost:9080"
	defaultTimeout = 30 * time.Second
	outFilePerm    = 0o600
)

// ErrVerifyFailed is returned when seeded standings do not match the plan.
var ErrVerifyFailed = errors.New("standings do not match the seeded results")

type rootFlags struct {
	url     string
	token   string
	timeout time.Duration
	verbose bool
}

func (f *rootFlags) client() *Client {
	return NewClient(f.url, f.token, f.timeout)
}

func (f *rootFlags) logger() logger.Logger {
	if f.verbose {
		_ = logger.SetLevelString("debug")
	}
	return logger.Named("festctl")
}

// NewRootCommand builds the festctl command tree.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "festctl",
		Short:         "Operate a running fest server",
		Long:          "festctl seeds, recalculates and exports festival data through the fest admin API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.url, "url", defaultURL, "base URL of the fest server")
	root.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("FEST_ADMIN_TOKEN"), "admin bearer token (default $FEST_ADMIN_TOKEN)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newHealthCommand(flags),
		newSeedCommand(flags),
		newRecalcCommand(flags),
		newStandingsCommand(flags),
		newExportCommand(flags),
	)
	return root
}

func newHealthCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.client().Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newSeedCommand(flags *rootFlags) *cobra.Command {
	cfg := SeedConfig{}
	var verify bool
	var verifyTimeout time.Duration
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the server with generated events, registrations and results",
		Example: `  festctl seed --students 200 --events 12
  festctl seed --seed 42 --verify`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			log := flags.logger()
			c := flags.client()

			plan := NewPlan(cfg)
			log.Info(ctx, "seeding",
				logger.Int("events", len(plan.Events)),
				logger.Int("registrations", len(plan.Registrations)),
				logger.Int("results", len(plan.Results)),
				logger.Int("workers", cfg.Workers),
			)
			stats, err := Seed(ctx, c, plan, cfg.Workers, log)
			printSeedStats(cmd.OutOrStdout(), stats)
			if err != nil {
				return err
			}
			if !verify || !cfg.Results {
				return nil
			}

			vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
			defer cancel()
			diffs, err := Verify(vctx, c, plan)
			if err != nil {
				return err
			}
			for _, d := range diffs {
				log.Warn(ctx, "standings mismatch", logger.String("diff", d))
			}
			if len(diffs) > 0 {
				return ErrVerifyFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), "standings verified")
			return nil
		},
	}
	f := cmd.Flags()
	f.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	f.IntVar(&cfg.Teams, "teams", 4, "number of teams")
	f.IntVar(&cfg.Students, "students", 60, "number of registrations")
	f.IntVar(&cfg.Events, "events", 10, "number of events taken from the catalog")
	f.IntVar(&cfg.Workers, "workers", 8, "concurrent requests")
	f.BoolVar(&cfg.Results, "results", true, "record podium results for every event")
	f.BoolVar(&verify, "verify", false, "compare served team totals with the seeded results")
	f.DurationVar(&verifyTimeout, "verify-timeout", 10*time.Second, "how long to wait for standings to settle")
	return cmd
}

func printSeedStats(w io.Writer, s SeedStats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "events created\t%d\n", s.EventsCreated)
	fmt.Fprintf(tw, "events skipped\t%d\n", s.EventsSkipped)
	fmt.Fprintf(tw, "registrations\t%d\n", s.Registered)
	fmt.Fprintf(tw, "results\t%d\n", s.ResultsCreated)
	fmt.Fprintf(tw, "failed\t%d\n", s.Failed)
	fmt.Fprintf(tw, "duration\t%s\n", s.Duration.Round(time.Millisecond))
	_ = tw.Flush()
}

func newRecalcCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Recompute stored points for every result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := flags.client().Recalculate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned %d, updated %d\n", report.Scanned, report.Updated)
			return nil
		},
	}
}

func newStandingsCommand(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Print team standings and the top students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := flags.client()
			st, err := c.Standings(ctx)
			if err != nil {
				return err
			}
			top, err := c.TopIndividuals(ctx, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tTEAM\tPOINTS")
			for _, t := range st.Teams {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", t.Rank, t.Team, points(t.Points))
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "RANK\tNAME\tCHEST\tTEAM\tPOINTS\t1ST\t2ND\t3RD")
			for _, e := range top {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
					e.Rank, e.Name, e.ChestNumber, e.Team, points(e.Points), e.Firsts, e.Seconds, e.Thirds)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of students to show")
	return cmd
}

func points(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

var exportPaths = map[string]string{
	"participants": "/export/participants.csv",
	"results":      "/export/results.csv",
	"standings":    "/export/standings.xlsx",
}

func newExportCommand(flags *rootFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:       "export participants|results|standings",
		Short:     "Download an export file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"participants", "results", "standings"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := exportPaths[args[0]]
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outFilePerm)
				if err != nil {
					return fmt.Errorf("open %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			n, err := flags.client().Download(cmd.Context(), path, w)
			if err != nil {
				return err
			}
			if out != "" {
				flags.logger().Info(cmd.Context(), "export written",
					logger.String("file", out),
					logger.Int("bytes", int(n)),
				)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to this file instead of stdout")
	return cmd
}

// Main runs festctl with args and returns the process exit code.
func Main(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		if errors.Is(err, api.ErrUnauthorized) {
			fmt.Fprintln(stderr, "hint: pass --token or set FEST_ADMIN_TOKEN")
		}
		return 1
	}
	return 0
}
