package stats

import (
	"github.com/verte-zerg/defectviz/internal/dataset"
	"github.com/verte-zerg/defectviz/internal/model"
)

// Report contains precomputed data for one dashboard render.
type Report struct {
	Summary  model.Summary
	AllDays  []int
	Records  []model.DefectRecord
	Pivot    model.PivotTable
	Heatmap  Heatmap
	Daily    []model.DailyStat
	Timeline []model.TimelineFrame
	// TimelineErr is set when the sample labels cannot be placed on the
	// hour axis. The other views are still built.
	TimelineErr error
}

// BuildReport filters the dataset and derives every view from the result.
// The summary and the list of available days describe the unfiltered data
// and are filled in even when the pivot fails.
func BuildReport(ds dataset.Dataset, cfg model.FilterConfig) (Report, error) {
	all := ds.Records()
	report := Report{
		Summary: Summarize(all),
		AllDays: DistinctDays(all),
	}
	filtered := FilterDays(all, cfg.Days)

	pivot, err := Pivot(filtered, cfg.Duplicates)
	if err != nil {
		return report, err
	}
	report.Records = filtered
	report.Pivot = pivot
	report.Heatmap = HeatmapFromPivot(pivot)
	report.Daily = DailyStats(filtered)
	report.Timeline, report.TimelineErr = Timeline(filtered)
	return report, nil
}
