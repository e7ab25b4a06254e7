package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/defectviz/internal/config"
	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/fetch"
	"github.com/verte-zerg/defectviz/internal/generator"
	"github.com/verte-zerg/defectviz/internal/stats"
	"github.com/verte-zerg/defectviz/internal/store"
)

var (
	fetchForce  bool
	fetchImport string

	demoOut    string
	demoImport string
	demoDays   int
	demoSeed   int64
	demoRate   float64
)

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import NAME PATH",
		Short: "Import a CSV or XLSX file as a named dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(args[1])
			if err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}
			return importDataset(cmd, args[0], ds)
		},
	}
}

func importDataset(cmd *cobra.Command, name string, ds dataset.Dataset) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("dataset name must not be empty")
	}
	err := withStore(func(st *store.Store) error {
		return st.ImportDataset(cmd.Context(), name, ds, time.Now())
	})
	if err != nil {
		return fmt.Errorf("failed to import dataset: %w", err)
	}
	logErrf("Imported %d records as %q\n", ds.Len(), name)
	return nil
}

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List imported datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows [][]string
			err := withStore(func(st *store.Store) error {
				infos, err := st.ListDatasets(cmd.Context())
				if err != nil {
					return err
				}
				for _, info := range infos {
					rows = append(rows, []string{
						info.Name,
						strconv.Itoa(info.Records),
						info.ImportedAt.Local().Format("2006-01-02 15:04"),
						info.Source,
					})
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to list datasets: %w", err)
			}
			if len(rows) == 0 {
				logErrln("No datasets imported. Import with: defectviz import NAME PATH")
				return nil
			}
			headers := []string{"Name", "Records", "Imported", "Source"}
			return stats.WriteTable(cmd.OutOrStdout(), headers, rows, map[int]bool{1: true})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an imported dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withStore(func(st *store.Store) error {
				return st.DeleteDataset(cmd.Context(), args[0])
			})
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("dataset %q not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to delete dataset: %w", err)
			}
			logErrf("Deleted %q\n", args[0])
			return nil
		},
	}
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Download a CSV dataset into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logErrf("Fetching %s...\n", args[0])
			file, err := fetch.Download(cmd.Context(), args[0], config.DefaultDownloadDir(), fetchForce)
			if err != nil {
				return fmt.Errorf("failed to fetch dataset: %w", err)
			}
			if file.Cached {
				logErrf("Using cached %s\n", file.Filename)
			} else {
				logErrf("Downloaded %s\n", file.Filename)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), file.Path); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if fetchImport == "" {
				return nil
			}
			ds, err := dataset.Load(file.Path)
			if err != nil {
				return fmt.Errorf("failed to load data: %w", err)
			}
			return importDataset(cmd, fetchImport, ds)
		},
	}
	cmd.Flags().BoolVar(&fetchForce, "force", false, "download again even if cached")
	cmd.Flags().StringVar(&fetchImport, "import", "", "also import the file under this dataset name")
	return cmd
}

func newDemoCmd() *cobra.Command {
	defaults := generator.DefaultOptions()
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate a synthetic defects dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if demoOut == "" && demoImport == "" {
				return fmt.Errorf("pass --out PATH and/or --import NAME")
			}
			opts := generator.DefaultOptions()
			opts.Days = demoDays
			opts.BaseRate = demoRate
			gen := generator.New()
			if cmd.Flags().Changed("seed") {
				gen = generator.NewSeeded(demoSeed)
			}
			records, err := gen.Generate(opts)
			if err != nil {
				return fmt.Errorf("failed to generate dataset: %w", err)
			}
			if demoOut != "" {
				if err := writeDatasetCSV(demoOut, dataset.New(demoOut, records)); err != nil {
					return err
				}
				logErrf("Wrote %d records to %s\n", len(records), demoOut)
			}
			if demoImport != "" {
				return importDataset(cmd, demoImport, dataset.New("demo", records))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&demoOut, "out", "", "CSV file to write")
	cmd.Flags().StringVar(&demoImport, "import", "", "import the generated data under this dataset name")
	cmd.Flags().IntVar(&demoDays, "day-count", defaults.Days, "number of days to generate")
	cmd.Flags().Int64Var(&demoSeed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().Float64Var(&demoRate, "rate", defaults.BaseRate, "mean defects per sample")
	return cmd
}

func writeDatasetCSV(path string, ds dataset.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "dataset-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if err := dataset.WriteCSV(tmpFile, ds.Records()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
