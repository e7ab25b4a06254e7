package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads the first sheet of a workbook. The first row must be the
// header with Day, Sample and Defects columns.
func LoadXLSX(path string) (Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Dataset{}, &LoadError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close for read-only workbook.
			_ = cerr
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, &LoadError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Dataset{}, &LoadError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	return parseRows(path, rows)
}
