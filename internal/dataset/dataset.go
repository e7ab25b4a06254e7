// Package dataset loads defect records into an immutable in-memory table.
package dataset

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/defectviz/internal/model"
)

const (
	colDay     = "day"
	colSample  = "sample"
	colDefects = "defects"
)

// Dataset is a read-only, ordered sequence of defect records.
type Dataset struct {
	source  string
	records []model.DefectRecord
}

// New builds a Dataset from records. The slice is copied.
func New(source string, records []model.DefectRecord) Dataset {
	out := make([]model.DefectRecord, len(records))
	copy(out, records)
	return Dataset{source: source, records: out}
}

// Source returns where the dataset was loaded from.
func (d Dataset) Source() string {
	return d.source
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records in load order.
func (d Dataset) Records() []model.DefectRecord {
	out := make([]model.DefectRecord, len(d.records))
	copy(out, d.records)
	return out
}

// LoadError reports a missing or malformed input file.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a dataset from path. Files ending in .xlsx are read as workbooks,
// everything else as CSV.
func Load(path string) (Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	default:
		return LoadCSV(path)
	}
}

type columnIndex struct {
	day     int
	sample  int
	defects int
}

func findColumns(header []string) (columnIndex, error) {
	idx := columnIndex{day: -1, sample: -1, defects: -1}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case colDay:
			idx.day = i
		case colSample:
			idx.sample = i
		case colDefects:
			idx.defects = i
		}
	}
	var missing []string
	if idx.day < 0 {
		missing = append(missing, "Day")
	}
	if idx.sample < 0 {
		missing = append(missing, "Sample")
	}
	if idx.defects < 0 {
		missing = append(missing, "Defects")
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// parseRows converts a header row plus data rows into a Dataset.
func parseRows(source string, rows [][]string) (Dataset, error) {
	if len(rows) == 0 {
		return Dataset{}, &LoadError{Path: source, Err: fmt.Errorf("no header row")}
	}
	idx, err := findColumns(rows[0])
	if err != nil {
		return Dataset{}, &LoadError{Path: source, Line: 1, Err: err}
	}
	records := make([]model.DefectRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		rec, err := parseRecord(row, idx)
		if err != nil {
			return Dataset{}, &LoadError{Path: source, Line: line, Err: err}
		}
		records = append(records, rec)
	}
	return Dataset{source: source, records: records}, nil
}

func parseRecord(row []string, idx columnIndex) (model.DefectRecord, error) {
	day, err := strconv.Atoi(cell(row, idx.day))
	if err != nil {
		return model.DefectRecord{}, fmt.Errorf("invalid Day %q", cell(row, idx.day))
	}
	sample := cell(row, idx.sample)
	if sample == "" {
		return model.DefectRecord{}, fmt.Errorf("empty Sample")
	}
	defects, err := strconv.Atoi(cell(row, idx.defects))
	if err != nil {
		return model.DefectRecord{}, fmt.Errorf("invalid Defects %q", cell(row, idx.defects))
	}
	if defects < 0 {
		return model.DefectRecord{}, fmt.Errorf("negative Defects %d", defects)
	}
	return model.DefectRecord{Day: day, Sample: sample, Defects: defects}, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
