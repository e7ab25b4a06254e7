// Package stats contains the defect aggregations and their text rendering.
package stats

import (
	"fmt"
	"math"
	"strconv"

	"github.com/verte-zerg/defectviz/internal/model"
)

const dayColumnPrefix = "defects_day_"

// DataIntegrityError reports a (Day, Sample) pair that matched more than one record.
type DataIntegrityError struct {
	Day    int
	Sample string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("duplicate record for day %d sample %q", e.Day, e.Sample)
}

// DayColumnName returns the pivot column name for a day.
func DayColumnName(day int) string {
	return dayColumnPrefix + strconv.Itoa(day)
}

// DayLabel returns the display label for a day.
func DayLabel(day int) string {
	return "Day " + strconv.Itoa(day)
}

// Pivot reshapes records into one row per sample and one column per day.
// Rows and columns follow first-seen order in records. Cells without a
// matching record are left empty.
func Pivot(records []model.DefectRecord, policy model.DuplicatePolicy) (model.PivotTable, error) {
	samples := make([]string, 0)
	sampleRow := make(map[string]int)
	for _, rec := range records {
		if _, ok := sampleRow[rec.Sample]; ok {
			continue
		}
		sampleRow[rec.Sample] = len(samples)
		samples = append(samples, rec.Sample)
	}

	columns := make([]model.DayColumn, 0)
	dayCol := make(map[int]int)
	for _, rec := range records {
		if _, ok := dayCol[rec.Day]; ok {
			continue
		}
		dayCol[rec.Day] = len(columns)
		columns = append(columns, model.DayColumn{
			Day:   rec.Day,
			Name:  DayColumnName(rec.Day),
			Cells: make([]model.Cell, len(samples)),
		})
	}

	for _, rec := range records {
		cells := columns[dayCol[rec.Day]].Cells
		row := sampleRow[rec.Sample]
		if cells[row].OK && policy == model.DuplicateReject {
			return model.PivotTable{}, &DataIntegrityError{Day: rec.Day, Sample: rec.Sample}
		}
		cells[row] = model.Cell{Defects: rec.Defects, OK: true}
	}
	return model.PivotTable{Samples: samples, Columns: columns}, nil
}

// Heatmap is the pivot transposed to days × samples. Empty cells are NaN.
type Heatmap struct {
	Days    []string
	Samples []string
	Values  [][]float64
}

// HeatmapFromPivot transposes a pivot table for heatmap rendering.
func HeatmapFromPivot(p model.PivotTable) Heatmap {
	hm := Heatmap{
		Days:    make([]string, len(p.Columns)),
		Samples: append([]string(nil), p.Samples...),
		Values:  make([][]float64, len(p.Columns)),
	}
	for i, col := range p.Columns {
		hm.Days[i] = DayLabel(col.Day)
		row := make([]float64, len(p.Samples))
		for j := range row {
			if j < len(col.Cells) && col.Cells[j].OK {
				row[j] = float64(col.Cells[j].Defects)
			} else {
				row[j] = math.NaN()
			}
		}
		hm.Values[i] = row
	}
	return hm
}

// Range returns the min and max of the non-empty cells. ok is false when
// the heatmap has no values.
func (h Heatmap) Range() (minVal, maxVal float64, ok bool) {
	minVal = math.Inf(1)
	maxVal = math.Inf(-1)
	for _, row := range h.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			ok = true
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if !ok {
		return 0, 0, false
	}
	return minVal, maxVal, true
}
