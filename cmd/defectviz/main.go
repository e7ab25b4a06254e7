// Package main provides the CLI entrypoint for defectviz.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/defectviz/internal/config"
	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/model"
	"github.com/verte-zerg/defectviz/internal/stats"
	"github.com/verte-zerg/defectviz/internal/statsui"
	"github.com/verte-zerg/defectviz/internal/store"
)

const (
	defaultDuplicates = "last"
	defaultFrameMs    = 1000
)

var (
	inputData       string
	inputDataset    string
	inputDays       string
	inputDuplicates string

	dashColors       string
	dashShowHeatmap  bool
	dashShowTable    bool
	dashShowTimeline bool
	dashFrameMs      int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "defectviz",
		Short:         "Manufacturing defects dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runDashboardCmd,
	}

	rootCmd.PersistentFlags().StringVar(&inputData, "data", "", "CSV or XLSX file with Day, Sample and Defects columns")
	rootCmd.PersistentFlags().StringVar(&inputDataset, "dataset", "", "name of an imported dataset")
	rootCmd.PersistentFlags().StringVar(&inputDays, "days", "", "comma separated days to show (default: all)")
	rootCmd.PersistentFlags().StringVar(&inputDuplicates, "duplicates", defaultDuplicates, "duplicate (day, sample) policy: last or reject")

	rootCmd.Flags().StringVar(&dashColors, "colors", statsui.DefaultScheme, "heatmap color scheme ("+strings.Join(statsui.SchemeNames(), ", ")+")")
	rootCmd.Flags().BoolVar(&dashShowHeatmap, "show-heatmap", true, "show the heatmap view")
	rootCmd.Flags().BoolVar(&dashShowTable, "show-table", true, "show the pivot table view")
	rootCmd.Flags().BoolVar(&dashShowTimeline, "show-timeline", true, "show the animated timeline view")
	rootCmd.Flags().IntVar(&dashFrameMs, "frame-ms", defaultFrameMs, "timeline frame duration in milliseconds")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newPivotCmd())
	rootCmd.AddCommand(newHeatmapCmd())
	rootCmd.AddCommand(newDailyCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newDatasetsCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newDemoCmd())

	return rootCmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "colors", &dashColors, fileCfg.Dashboard.Colors)
	applyBoolConfig(cmd, "show-heatmap", &dashShowHeatmap, fileCfg.Dashboard.ShowHeatmap)
	applyBoolConfig(cmd, "show-table", &dashShowTable, fileCfg.Dashboard.ShowTable)
	applyBoolConfig(cmd, "show-timeline", &dashShowTimeline, fileCfg.Dashboard.ShowTimeline)
	applyIntConfig(cmd, "frame-ms", &dashFrameMs, fileCfg.Dashboard.FrameMs)

	ds, cfg, err := resolveInput(cmd, fileCfg)
	if err != nil {
		return err
	}
	scheme, ok := statsui.LookupScheme(dashColors)
	if !ok {
		return fmt.Errorf("unknown color scheme %q (available: %s)", dashColors, strings.Join(statsui.SchemeNames(), ", "))
	}
	if dashFrameMs <= 0 {
		return fmt.Errorf("--frame-ms must be > 0")
	}
	cfg.ColorScheme = scheme.Name
	cfg.ShowHeatmap = dashShowHeatmap
	cfg.ShowTable = dashShowTable
	cfg.ShowTimeline = dashShowTimeline

	dashboard := statsui.NewModel(ds, cfg, time.Duration(dashFrameMs)*time.Millisecond)
	program := tea.NewProgram(dashboard, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

// resolveInput merges the shared input flags with the config file and loads
// the selected dataset.
func resolveInput(cmd *cobra.Command, fileCfg config.FileConfig) (dataset.Dataset, model.FilterConfig, error) {
	dash := fileCfg.Dashboard
	if !cmd.Flags().Changed("data") && !cmd.Flags().Changed("dataset") {
		applyStringConfig(cmd, "data", &inputData, dash.Data)
		applyStringConfig(cmd, "dataset", &inputDataset, dash.Dataset)
	}
	if !cmd.Flags().Changed("days") && dash.Days != nil {
		inputDays = stats.FormatDays(dash.Days)
	}
	applyStringConfig(cmd, "duplicates", &inputDuplicates, dash.Duplicates)

	cfg, err := filterConfigFromFlags()
	if err != nil {
		return dataset.Dataset{}, model.FilterConfig{}, err
	}
	ds, err := loadInput(cmd.Context())
	if err != nil {
		return dataset.Dataset{}, model.FilterConfig{}, err
	}
	return ds, cfg, nil
}

func filterConfigFromFlags() (model.FilterConfig, error) {
	days, err := stats.ParseDays(inputDays)
	if err != nil {
		return model.FilterConfig{}, fmt.Errorf("invalid --days value: %w", err)
	}
	policy, err := config.ParseDuplicatePolicy(inputDuplicates)
	if err != nil {
		return model.FilterConfig{}, fmt.Errorf("invalid --duplicates value: %w", err)
	}
	return model.FilterConfig{
		Days:       days,
		Duplicates: policy,
	}, nil
}

func loadInput(ctx context.Context) (dataset.Dataset, error) {
	data := strings.TrimSpace(inputData)
	name := strings.TrimSpace(inputDataset)
	switch {
	case data != "" && name != "":
		return dataset.Dataset{}, fmt.Errorf("use either --data or --dataset, not both")
	case data != "":
		ds, err := dataset.Load(data)
		if err != nil {
			return dataset.Dataset{}, fmt.Errorf("failed to load data: %w", err)
		}
		return ds, nil
	case name != "":
		var ds dataset.Dataset
		err := withStore(func(st *store.Store) error {
			var err error
			ds, err = st.LoadDataset(ctx, name)
			return err
		})
		if errors.Is(err, store.ErrNotFound) {
			return dataset.Dataset{}, fmt.Errorf("dataset %q not found (see: defectviz datasets)", name)
		}
		if err != nil {
			return dataset.Dataset{}, fmt.Errorf("failed to load dataset: %w", err)
		}
		return ds, nil
	default:
		return dataset.Dataset{}, fmt.Errorf("no input: pass --data PATH or --dataset NAME (or run: defectviz demo)")
	}
}

func withStore(fn func(st *store.Store) error) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	return fn(st)
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# defectviz configuration
# Uncomment a value to enable it. CLI flags override config values.

[dashboard]
# data = "defects.csv"    # CSV or XLSX input file
# dataset = "line-a"      # Imported dataset name (instead of data)
# days = [1, 2, 3]        # Days to show (default: all)
# colors = %q         # Heatmap color scheme: %s
# show-heatmap = true     # Show the heatmap view
# show-table = true       # Show the pivot table view
# show-timeline = true    # Show the animated timeline view
# duplicates = %q       # Duplicate (day, sample) policy: last or reject
# frame-ms = %d         # Timeline frame duration in milliseconds
`,
		statsui.DefaultScheme,
		strings.Join(statsui.SchemeNames(), ", "),
		defaultDuplicates,
		defaultFrameMs,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
