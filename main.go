package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ppa/pkg/config"
	"ppa/pkg/ingest"
	"ppa/pkg/logging"
	"ppa/pkg/models"
	"ppa/pkg/report"
	"ppa/pkg/workflow"
)

var (
	// Global flags
	configPath string
	verbose    bool
	quiet      bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ppa",
	Short: "Price Pack Architecture: tier SKUs by price per wash and compare them with competitors",
	Long: `ppa classifies company and competitor SKUs into Value, Mainstream and Premium
tiers by price per wash, then reports segment growth and share, a competitive
price index, brand share shifts and per-SKU growth.

Datasets are .csv or .xlsx files, or tables behind a mysql://, mariadb:// or
sqlite:// DSN. Settings come from ppa.yaml, PPA_* variables, then flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if err := applyFlags(cmd, &cfg); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development || verbose, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write the company and competitor XLSX templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("out")
		paths, err := ingest.WriteTemplates(dir)
		if err != nil {
			return fmt.Errorf("write templates: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Show the price-per-wash range of each dataset, to help choose thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		return report.Ranges(cmd.OutOrStdout(), s.Ranges())
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify SKUs and write the full report",
	RunE:  runClassify,
}

var compareCmd = &cobra.Command{
	Use:   "compare SKU_A SKU_B",
	Short: "Compute the price-per-wash index of two SKUs (A / B)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		if _, err := s.Classify(cfg.Thresholds); err != nil {
			return err
		}
		p, err := s.Compare(args[0], args[1])
		if err != nil {
			return err
		}
		return report.Pairwise(cmd.OutOrStdout(), p)
	},
}

func runClassify(cmd *cobra.Command, args []string) error {
	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.Default(4, "classify")
	}
	s, err := openSession(cmd, bar)
	if err != nil {
		return err
	}

	a, err := s.Classify(cfg.Thresholds)
	if err != nil {
		return err
	}
	step(bar)

	out, err := output(cmd, cfg.Output.Path)
	if err != nil {
		return err
	}
	if err := writeReport(out, a, cfg); err != nil {
		return err
	}
	step(bar)

	_, runID, _ := s.Analysis()
	logger.Info("report written",
		zap.String("run_id", runID),
		zap.String("format", cfg.Output.Format),
		zap.Int("warnings", len(a.Warnings)))
	return nil
}

func openSession(cmd *cobra.Command, bar *progressbar.ProgressBar) (*workflow.Session, error) {
	company, competitor, err := loadSources(cmd.Context(), cfg.Sources, logger, func() { step(bar) })
	if err != nil {
		return nil, err
	}
	return workflow.NewSession(company, competitor,
		workflow.WithLogger(logger),
		workflow.WithShelfRows(cfg.ShelfRows))
}

func step(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// output opens the report destination; stdout when path is empty or "-".
func output(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// writeReport renders a into out and closes it. A failed close fails the write.
func writeReport(out io.WriteCloser, a *models.Analysis, c config.Config) error {
	err := report.Write(out, c.Output.Format, a, report.Options{Currency: c.Currency})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// applyFlags overlays explicitly set flags on cfg.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	set := func(name string, apply func() error) error {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			return nil
		}
		return apply()
	}
	str := func(name string, dst *string) error {
		return set(name, func() (err error) { *dst, err = flags.GetString(name); return })
	}
	num := func(name string, dst *float64) error {
		return set(name, func() (err error) { *dst, err = flags.GetFloat64(name); return })
	}

	for _, err := range []error{
		str("company", &c.Sources.Company),
		str("competitor", &c.Sources.Competitor),
		str("dsn", &c.Sources.DSN),
		str("company-table", &c.Sources.CompanyTable),
		str("competitor-table", &c.Sources.CompetitorTable),
		str("currency", &c.Currency),
		str("format", &c.Output.Format),
		str("out", &c.Output.Path),
		str("log-level", &c.Logging.Level),
		num("value-max", &c.Thresholds.ValueMax),
		num("mainstream-max", &c.Thresholds.MainstreamMax),
		num("premium-max", &c.Thresholds.PremiumMax),
		set("shelf-rows", func() (err error) { c.ShelfRows, err = flags.GetInt("shelf-rows"); return }),
	} {
		if err != nil {
			return err
		}
	}
	return c.Validate()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ppa.yaml, or $PPA_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on a console encoder")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{rangeCmd, classifyCmd, compareCmd} {
		cmd.Flags().String("company", "", "Company dataset (.csv, .xlsx)")
		cmd.Flags().String("competitor", "", "Competitor dataset (.csv, .xlsx)")
		cmd.Flags().String("dsn", "", "Load both datasets from a database (mysql://, mariadb://, sqlite://)")
		cmd.Flags().String("company-table", "company_skus", "Company table when --dsn is set")
		cmd.Flags().String("competitor-table", "competitor_skus", "Competitor table when --dsn is set")
		cmd.Flags().Int("shelf-rows", 3, "Shelf rows available for the category")
	}
	for _, cmd := range []*cobra.Command{classifyCmd, compareCmd} {
		cmd.Flags().Float64("value-max", 0.13, "Upper price-per-wash bound of Value")
		cmd.Flags().Float64("mainstream-max", 0.17, "Upper price-per-wash bound of Mainstream")
		cmd.Flags().Float64("premium-max", 1.0, "Upper price-per-wash bound of Premium")
	}
	classifyCmd.Flags().String("format", config.FormatMarkdown, "Report format (markdown, html, json)")
	classifyCmd.Flags().StringP("out", "o", "", "Report file (default stdout)")
	classifyCmd.Flags().String("currency", "₹", "Currency symbol used in the report")
	classifyCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar")
	templateCmd.Flags().StringP("out", "o", ".", "Directory for the templates")

	rootCmd.AddCommand(templateCmd, rangeCmd, classifyCmd, compareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
