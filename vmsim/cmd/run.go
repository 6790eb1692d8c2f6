package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"

	"github.com/sarchlab/vmsim/config"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/logging"
	"github.com/sarchlab/vmsim/mem/backingstore"
	"github.com/sarchlab/vmsim/mem/trace"
	"github.com/sarchlab/vmsim/mem/vm/frame"
	"github.com/sarchlab/vmsim/mem/vm/translator"
	"github.com/sarchlab/vmsim/report"
	"github.com/sarchlab/vmsim/stats"
	"github.com/sarchlab/vmsim/stream"
	"github.com/spf13/cobra"
)

var errNoAddresses = errors.New("no address file given")

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [address-file]",
		Short: "Translate every address of an address file.",
		Long: `Translate every address of an address file, printing one line ` +
			`per address followed by a summary. Settings come from the ` +
			`defaults, the --config file, VMSIM_* environment variables ` +
			`(optionally from a .env file) and flags, in increasing precedence.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			logging.Init(cmd.ErrOrStderr(), cfg.LogLevel)

			quiet, _ := cmd.Flags().GetBool("quiet")

			_, err = simulate(cfg, cmd.OutOrStdout(), quiet)

			return err
		},
	}

	d := config.Defaults()
	f := runCmd.Flags()
	f.String("addresses", "", "File with one logical address per line")
	f.String("backing-store", d.BackingStore, "Backing store file")
	f.Int("frames", d.NumFrames, "Number of physical frames")
	f.String("policy", d.Policy, "Frame replacement policy")
	f.Bool("tlb", d.TLBEnabled, "Use the TLB")
	f.Int("tlb-capacity", d.TLBCapacity, "Number of TLB records")
	f.Bool("tlb-eviction-invalidates", d.TLBEvictionInvalidates,
		"Invalidate the page table entry of pages evicted from the TLB")
	f.String("record", "", "Record translations into this sqlite database")
	f.String("config", "", "JSON configuration file")
	f.String("log-level", d.LogLevel, "DEBUG, INFO, WARN or ERROR")
	f.String("summary-format", d.SummaryFormat, "text or json")
	f.Bool("quiet", false, "Do not print per-address lines")

	return runCmd
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}

// loadConfig merges the configuration sources. Flags only override the
// other sources when they are set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (config.Config, error) {
	cfg := config.Defaults()
	f := cmd.Flags()

	path, _ := f.GetString("config")
	if path != "" {
		err := config.Load(path, &cfg)
		if err != nil {
			return cfg, err
		}
	}

	err := cfg.LoadEnv(".env")
	if err != nil {
		return cfg, err
	}

	strs := map[string]*string{
		"addresses":      &cfg.AddressFile,
		"backing-store":  &cfg.BackingStore,
		"policy":         &cfg.Policy,
		"record":         &cfg.RecordDB,
		"log-level":      &cfg.LogLevel,
		"summary-format": &cfg.SummaryFormat,
	}
	for name, field := range strs {
		if f.Changed(name) {
			*field, _ = f.GetString(name)
		}
	}

	if f.Changed("frames") {
		cfg.NumFrames, _ = f.GetInt("frames")
	}

	if f.Changed("tlb-capacity") {
		cfg.TLBCapacity, _ = f.GetInt("tlb-capacity")
	}

	if f.Changed("tlb") {
		cfg.TLBEnabled, _ = f.GetBool("tlb")
	}

	if f.Changed("tlb-eviction-invalidates") {
		cfg.TLBEvictionInvalidates, _ = f.GetBool("tlb-eviction-invalidates")
	}

	if len(args) > 0 {
		cfg.AddressFile = args[0]
	}

	if cfg.AddressFile == "" {
		return cfg, errNoAddresses
	}

	return cfg, cfg.Validate()
}

// simulate translates the configured address file and writes the trace and
// the summary to out.
func simulate(cfg config.Config, out io.Writer, quiet bool) (stats.Logs, error) {
	addrs, err := stream.ReadFile(cfg.AddressFile)
	if err != nil {
		return stats.Logs{}, err
	}

	store, err := backingstore.Open(cfg.BackingStore)
	if err != nil {
		return stats.Logs{}, err
	}
	defer store.Close()

	policy, err := frame.ParsePolicy(cfg.Policy)
	if err != nil {
		return stats.Logs{}, err
	}

	t, err := translator.MakeBuilder().
		WithNumFrames(cfg.NumFrames).
		WithPolicy(policy).
		WithTLBEnabled(cfg.TLBEnabled).
		WithTLBCapacity(cfg.TLBCapacity).
		WithTLBEvictionInvalidation(cfg.TLBEvictionInvalidates).
		WithBackingStore(store).
		Build("Translator")
	if err != nil {
		return stats.Logs{}, err
	}

	if !quiet {
		t.AcceptHook(trace.NewTracer(log.New(out, "", 0)))
	}

	if cfg.RecordDB != "" {
		recorder, err := datarecording.New(cfg.RecordDB)
		if err != nil {
			return stats.Logs{}, err
		}
		defer recorder.Close()

		t.AcceptHook(trace.NewDBTracer(recorder))
		slog.Info("recording translations", "db", cfg.RecordDB+".sqlite3")
	}

	slog.Info("simulation started",
		"addresses", len(addrs), "frames", cfg.NumFrames,
		"tlb", cfg.TLBEnabled)

	runErr := t.Run(addrs)
	logs := t.Stats()

	if runErr != nil {
		return logs, fmt.Errorf("after %d translations: %w",
			logs.Translated, runErr)
	}

	slog.Info("simulation finished",
		"translated", logs.Translated, "faults", logs.Faults)

	summary := report.NewSummary(logs)
	if cfg.SummaryFormat == config.FormatJSON {
		err = summary.WriteJSON(out)
	} else {
		err = summary.Print(out)
	}

	return logs, err
}
