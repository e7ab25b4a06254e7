package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/verte-zerg/defectviz/internal/model"
)

// LoadCSV reads a comma-separated dataset with Day, Sample and Defects columns.
func LoadCSV(path string) (Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return Dataset{}, &LoadError{Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return ReadCSV(file, path)
}

// ReadCSV parses CSV data from r. source names the input in errors.
func ReadCSV(r io.Reader, source string) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return Dataset{}, &LoadError{Path: source, Line: perr.Line, Err: perr.Err}
		}
		return Dataset{}, &LoadError{Path: source, Err: err}
	}
	return parseRows(source, rows)
}

// WriteCSV writes records with the canonical header.
func WriteCSV(w io.Writer, records []model.DefectRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Day", "Sample", "Defects"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		row := []string{strconv.Itoa(rec.Day), rec.Sample, strconv.Itoa(rec.Defects)}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
