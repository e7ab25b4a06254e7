// Package model defines shared data structures.
package model

import "time"

// DefectRecord is one observation: the defect count for a day and time sample.
type DefectRecord struct {
	Day     int
	Sample  string
	Defects int
}

// DuplicatePolicy selects how the pivot resolves repeated (Day, Sample) pairs.
type DuplicatePolicy int

const (
	// DuplicateLastWins keeps the last matching record in input order.
	DuplicateLastWins DuplicatePolicy = iota
	// DuplicateReject fails the pivot with a data integrity error.
	DuplicateReject
)

// String returns the config spelling of the policy.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	default:
		return "last"
	}
}

// FilterConfig defines the user-driven options for a dashboard render.
type FilterConfig struct {
	Days         []int
	ColorScheme  string
	ShowHeatmap  bool
	ShowTable    bool
	ShowTimeline bool
	Duplicates   DuplicatePolicy
}

// Cell is one pivot value. OK is false when no record matched.
type Cell struct {
	Defects int
	OK      bool
}

// DayColumn holds the pivot values for one day, aligned with PivotTable.Samples.
type DayColumn struct {
	Day   int
	Name  string
	Cells []Cell
}

// PivotTable is the wide view of defect records: one row per sample, one column per day.
type PivotTable struct {
	Samples []string
	Columns []DayColumn
}

// DailyStat summarizes defect counts for one day.
type DailyStat struct {
	Day   int
	Count int
	Mean  float64
	Max   int
	Min   int
	Std   float64
}

// Summary describes the whole loaded dataset.
type Summary struct {
	Records    int
	Days       int
	Samples    int
	MinDefects int
	MaxDefects int
}

// TimelinePoint places one record on the time-of-day axis.
type TimelinePoint struct {
	Sample  string
	Hour    float64
	Defects int
	At      time.Time
}

// TimelineFrame is one animation frame of the timeline (a single day).
type TimelineFrame struct {
	Day    int
	Label  string
	Points []TimelinePoint
}

// DatasetInfo describes a dataset stored in the local database.
type DatasetInfo struct {
	Name       string
	Source     string
	Records    int
	ImportedAt time.Time
}
