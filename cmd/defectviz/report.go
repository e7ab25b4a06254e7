package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/defectviz/internal/config"
	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/export"
	"github.com/verte-zerg/defectviz/internal/model"
	"github.com/verte-zerg/defectviz/internal/stats"
)

var (
	pivotCSV  bool
	dailyPlot bool
	exportOut string
)

func newSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print dataset information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, _, err := loadDataset(cmd)
			if err != nil {
				return err
			}
			return stats.RenderSummary(cmd.OutOrStdout(), stats.Summarize(ds.Records()))
		},
	}
}

func newPivotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pivot",
		Short: "Print defects per time sample and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := buildReport(cmd)
			if err != nil {
				return err
			}
			if pivotCSV {
				return export.WritePivotCSV(cmd.OutOrStdout(), report.Pivot)
			}
			return stats.RenderPivot(cmd.OutOrStdout(), report.Pivot)
		},
	}
	cmd.Flags().BoolVar(&pivotCSV, "csv", false, "write CSV instead of a text table")
	return cmd
}

func newHeatmapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap",
		Short: "Print a shaded defects heatmap, days down and samples across",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := buildReport(cmd)
			if err != nil {
				return err
			}
			return stats.RenderHeatmap(cmd.OutOrStdout(), stats.HeatmapFromPivot(report.Pivot))
		},
	}
}

func newDailyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Print per-day defect statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := buildReport(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := stats.RenderDaily(out, report.Daily); err != nil {
				return err
			}
			if !dailyPlot {
				return nil
			}
			return stats.RenderTrend(out, report.Daily, stats.PlotOptions{})
		},
	}
	cmd.Flags().BoolVar(&dailyPlot, "plot", false, "also plot the daily trend")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write pivot CSV and PNG charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if exportOut == "" {
				return fmt.Errorf("--out must not be empty")
			}
			report, err := buildReport(cmd)
			if err != nil {
				return err
			}
			files, err := export.WriteAll(exportOut, report)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
			if report.TimelineErr != nil {
				logErrf("Skipped timeline.png: %v\n", report.TimelineErr)
			}
			for _, path := range []string{files.Pivot, files.Trend, files.Timeline} {
				if path != "" {
					logErrf("Wrote %s\n", path)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&exportOut, "out", ".", "output directory")
	return cmd
}

func loadDataset(cmd *cobra.Command) (dataset.Dataset, model.FilterConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return dataset.Dataset{}, model.FilterConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	return resolveInput(cmd, fileCfg)
}

func buildReport(cmd *cobra.Command) (stats.Report, error) {
	ds, cfg, err := loadDataset(cmd)
	if err != nil {
		return stats.Report{}, err
	}
	report, err := stats.BuildReport(ds, cfg)
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to build report: %w", err)
	}
	return report, nil
}
