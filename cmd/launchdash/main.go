// Package main provides the CLI entrypoint for launchdash.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/launchdash/internal/chart"
	"github.com/verte-zerg/launchdash/internal/config"
	"github.com/verte-zerg/launchdash/internal/dashboard"
	"github.com/verte-zerg/launchdash/internal/dataset"
	"github.com/verte-zerg/launchdash/internal/logging"
	"github.com/verte-zerg/launchdash/internal/model"
	"github.com/verte-zerg/launchdash/internal/query"
	"github.com/verte-zerg/launchdash/internal/store"
)

const (
	formatCSV    = "csv"
	formatSQLite = "sqlite"
)

// options holds the resolved settings shared by every command.
type options struct {
	DataPath   string
	Format     string
	DBPath     string
	Site       string
	PayloadMin *float64
	PayloadMax *float64
	SliderMax  float64
	SliderStep float64
	LogLevel   string
	LogFormat  string
	LogFile    string
}

var (
	flagData       string
	flagFormat     string
	flagDB         string
	flagSite       string
	flagPayloadMin float64
	flagPayloadMax float64
	flagSliderMax  float64
	flagSliderStep float64
	flagLogLevel   string
	flagLogFormat  string
	flagLogFile    string

	exportFormat string
	exportOutput string

	importFrom string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "launchdash",
		Short:         "Launch records dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagData, "data", config.DefaultDatasetPath(), "CSV dataset path")
	flags.StringVar(&flagFormat, "format", formatCSV, "dataset source: csv or sqlite")
	flags.StringVar(&flagDB, "db", config.DefaultDBPath(), "SQLite snapshot path")
	flags.StringVar(&flagSite, "site", model.AllSites, "launch site or ALL")
	flags.Float64Var(&flagPayloadMin, "payload-min", 0, "lower payload bound in kg (default: dataset minimum)")
	flags.Float64Var(&flagPayloadMax, "payload-max", 0, "upper payload bound in kg (default: dataset maximum)")
	flags.Float64Var(&flagSliderMax, "slider-max", chart.DefaultSliderMax, "payload slider maximum in kg")
	flags.Float64Var(&flagSliderStep, "slider-step", chart.DefaultSliderStep, "payload slider step in kg")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&flagLogFormat, "log-format", "text", "log format: text or json")
	flags.StringVar(&flagLogFile, "log-file", "", "append logs to this file")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSitesCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())

	return rootCmd
}

func resolveOptions(cmd *cobra.Command) (options, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return options{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "data", &flagData, fileCfg.Dataset.Path)
	applyStringConfig(cmd, "format", &flagFormat, fileCfg.Dataset.Format)
	applyStringConfig(cmd, "db", &flagDB, fileCfg.Dataset.DBPath)
	applyStringConfig(cmd, "site", &flagSite, fileCfg.Dashboard.Site)
	applyFloatConfig(cmd, "slider-max", &flagSliderMax, fileCfg.Dashboard.SliderMax)
	applyFloatConfig(cmd, "slider-step", &flagSliderStep, fileCfg.Dashboard.SliderStep)
	applyStringConfig(cmd, "log-level", &flagLogLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &flagLogFormat, fileCfg.Log.Format)
	applyStringConfig(cmd, "log-file", &flagLogFile, fileCfg.Log.File)

	opts := options{
		DataPath:   flagData,
		Format:     strings.ToLower(strings.TrimSpace(flagFormat)),
		DBPath:     flagDB,
		Site:       strings.TrimSpace(flagSite),
		PayloadMin: resolvePayload(cmd, "payload-min", flagPayloadMin, fileCfg.Dashboard.PayloadMin),
		PayloadMax: resolvePayload(cmd, "payload-max", flagPayloadMax, fileCfg.Dashboard.PayloadMax),
		SliderMax:  flagSliderMax,
		SliderStep: flagSliderStep,
		LogLevel:   flagLogLevel,
		LogFormat:  flagLogFormat,
		LogFile:    flagLogFile,
	}
	if err := validateOptions(opts); err != nil {
		return options{}, err
	}
	return opts, nil
}

func validateOptions(opts options) error {
	if opts.Format != formatCSV && opts.Format != formatSQLite {
		return fmt.Errorf("--format must be %s or %s", formatCSV, formatSQLite)
	}
	if opts.Format == formatCSV && opts.DataPath == "" {
		return fmt.Errorf("--data must not be empty")
	}
	if opts.Format == formatSQLite && opts.DBPath == "" {
		return fmt.Errorf("--db must not be empty")
	}
	if opts.SliderMax <= 0 {
		return fmt.Errorf("--slider-max must be > 0")
	}
	if opts.SliderStep <= 0 {
		return fmt.Errorf("--slider-step must be > 0")
	}
	if opts.PayloadMin != nil && *opts.PayloadMin < 0 {
		return fmt.Errorf("--payload-min must be >= 0")
	}
	if opts.PayloadMin != nil && opts.PayloadMax != nil && *opts.PayloadMin > *opts.PayloadMax {
		return fmt.Errorf("--payload-min must not exceed --payload-max")
	}
	if _, err := logging.ParseLevel(opts.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	return nil
}

func resolvePayload(cmd *cobra.Command, name string, flagValue float64, cfgValue *float64) *float64 {
	if cmd.Flags().Changed(name) {
		v := flagValue
		return &v
	}
	return cfgValue
}

func loadDataset(ctx context.Context, opts options, logger *slog.Logger) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch opts.Format {
	case formatSQLite:
		st, oerr := store.Open(opts.DBPath)
		if oerr != nil {
			return nil, &dataset.LoadError{Source: opts.DBPath, Err: oerr}
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Warn("failed to close db", "path", opts.DBPath, "err", cerr)
			}
		}()
		info, serr := st.Snapshot(ctx)
		if errors.Is(serr, store.ErrNoSnapshot) {
			return nil, &dataset.LoadError{Source: opts.DBPath, Err: fmt.Errorf("%w (run \"launchdash import\" first)", serr)}
		}
		if serr != nil {
			return nil, &dataset.LoadError{Source: opts.DBPath, Err: serr}
		}
		logger.Debug("snapshot found", "source", info.Source, "records", info.Records, "imported_at", info.ImportedAt)
		ds, err = dataset.LoadSnapshot(ctx, st, opts.DBPath)
	default:
		ds, err = dataset.LoadFile(opts.DataPath)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		"source", ds.Source(),
		"records", ds.Len(),
		"sites", len(ds.Sites()),
		"payload_min", ds.MinPayload(),
		"payload_max", ds.MaxPayload(),
	)
	return ds, nil
}

// selectionFor builds the initial filter selection, defaulting to every site and the dataset payload bounds.
func selectionFor(ds *dataset.Dataset, opts options) (model.FilterSelection, error) {
	sel := query.DefaultSelection(ds)
	site, err := resolveSite(opts.Site, ds)
	if err != nil {
		return model.FilterSelection{}, err
	}
	sel.Site = site
	if opts.PayloadMin != nil {
		sel.Payload.Low = *opts.PayloadMin
	}
	if opts.PayloadMax != nil {
		sel.Payload.High = *opts.PayloadMax
	}
	return sel, nil
}

func resolveSite(site string, ds *dataset.Dataset) (string, error) {
	if site == "" || strings.EqualFold(site, model.AllSites) {
		return model.AllSites, nil
	}
	if !ds.HasSite(site) {
		return "", fmt.Errorf("unknown site %q (available: %s)", site, strings.Join(ds.Sites(), ", "))
	}
	return site, nil
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	// Logging to the terminal would corrupt the alternate screen.
	logger, closeLog, err := logging.Open(logging.Options{Level: opts.LogLevel, Format: opts.LogFormat, File: opts.LogFile}, io.Discard)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	ds, err := loadDataset(cmd.Context(), opts, logger)
	if err != nil {
		return err
	}
	sel, err := selectionFor(ds, opts)
	if err != nil {
		return err
	}

	m := dashboard.NewModel(ds, sel, chart.NewSlider(opts.SliderMax, opts.SliderStep), logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// stderrLogger opens the logger used by non-interactive commands.
func stderrLogger(opts options) (*slog.Logger, func() error, error) {
	return logging.Open(logging.Options{Level: opts.LogLevel, Format: opts.LogFormat, File: opts.LogFile}, os.Stderr)
}

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print both charts as text",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	res, ds, err := evaluateFromFlags(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Dataset: %s (%d launches, payload %s..%s kg)\n\n",
		ds.Source(), ds.Len(), formatKg(ds.MinPayload()), formatKg(ds.MaxPayload())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, spec := range chart.FromResult(res) {
		if err := chart.Render(out, spec, chart.Options{}); err != nil {
			return fmt.Errorf("failed to render %s chart: %w", spec.Kind, err)
		}
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write chart specifications as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportFormat, "as", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	res, _, err := evaluateFromFlags(cmd)
	if err != nil {
		return err
	}
	specs := chart.FromResult(res)
	if exportOutput == "" {
		return chart.Encode(cmd.OutOrStdout(), specs, exportFormat)
	}
	return writeFileAtomic(exportOutput, func(w io.Writer) error {
		return chart.Encode(w, specs, exportFormat)
	})
}

func evaluateFromFlags(cmd *cobra.Command) (query.Result, *dataset.Dataset, error) {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return query.Result{}, nil, err
	}
	logger, closeLog, err := stderrLogger(opts)
	if err != nil {
		return query.Result{}, nil, err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()
	ds, err := loadDataset(cmd.Context(), opts, logger)
	if err != nil {
		return query.Result{}, nil, err
	}
	sel, err := selectionFor(ds, opts)
	if err != nil {
		return query.Result{}, nil, err
	}
	res := query.Evaluate(ds, sel)
	logger.Debug("filter applied", "site", sel.Site, "payload_low", sel.Payload.Low, "payload_high", sel.Payload.High)
	return res, ds, nil
}

func newSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List launch sites and payload bounds",
		Args:  cobra.NoArgs,
		RunE:  runSitesCmd,
	}
}

func runSitesCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := stderrLogger(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()
	ds, err := loadDataset(cmd.Context(), opts, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, opt := range ds.SiteOptions() {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", opt.Value, opt.Label); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if _, err := fmt.Fprintf(out, "payload\t%s..%s kg\n", formatKg(ds.MinPayload()), formatKg(ds.MaxPayload())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV dataset into the SQLite snapshot",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importFrom, "from", "", "CSV file to import (default: --data)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	opts, err := resolveOptions(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := stderrLogger(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	src := importFrom
	if src == "" {
		src = opts.DataPath
	}
	ds, err := dataset.LoadFile(src)
	if err != nil {
		return err
	}
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.ReplaceLaunches(cmd.Context(), src, ds.Records(), time.Now()); err != nil {
		return fmt.Errorf("failed to import dataset: %w", err)
	}
	logger.Info("dataset imported", "source", src, "db", opts.DBPath, "records", ds.Len())
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "launchdash-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := write(tmpFile); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# launchdash configuration
# Uncomment a value to enable it. CLI flags override config values.

[dataset]
# path = %q   # CSV dataset path
# format = "csv"          # Dataset source: csv or sqlite
# db-path = %q   # SQLite snapshot written by "launchdash import"

[dashboard]
# site = "ALL"            # Initial launch site
# payload-min = 0.0       # Initial lower payload bound (kg); default dataset minimum
# payload-max = 10000.0   # Initial upper payload bound (kg); default dataset maximum
# slider-max = %.1f     # Payload slider maximum (kg)
# slider-step = %.1f     # Payload slider step (kg)

[log]
# level = "info"          # debug, info, warn, error
# format = "text"         # text or json
# file = %q
`,
		config.DefaultDatasetPath(),
		config.DefaultDBPath(),
		float64(chart.DefaultSliderMax),
		float64(chart.DefaultSliderStep),
		config.DefaultLogPath(),
	)
}

func formatKg(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
