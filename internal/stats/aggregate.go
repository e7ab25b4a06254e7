package stats

import (
	"math"
	"sort"

	"github.com/verte-zerg/defectviz/internal/model"
)

// FilterDays keeps records whose Day is in days, in their original order.
// An empty selection keeps everything.
func FilterDays(records []model.DefectRecord, days []int) []model.DefectRecord {
	if len(days) == 0 {
		out := make([]model.DefectRecord, len(records))
		copy(out, records)
		return out
	}
	selected := make(map[int]struct{}, len(days))
	for _, d := range days {
		selected[d] = struct{}{}
	}
	out := make([]model.DefectRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := selected[rec.Day]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// DailyStats computes mean, max, min and sample standard deviation of
// defects per day, sorted by day. Std is NaN for days with one record.
func DailyStats(records []model.DefectRecord) []model.DailyStat {
	groups := make(map[int][]int)
	for _, rec := range records {
		groups[rec.Day] = append(groups[rec.Day], rec.Defects)
	}
	days := make([]int, 0, len(groups))
	for day := range groups {
		days = append(days, day)
	}
	sort.Ints(days)

	out := make([]model.DailyStat, 0, len(days))
	for _, day := range days {
		values := groups[day]
		st := model.DailyStat{
			Day:   day,
			Count: len(values),
			Max:   values[0],
			Min:   values[0],
		}
		var sum float64
		for _, v := range values {
			sum += float64(v)
			if v > st.Max {
				st.Max = v
			}
			if v < st.Min {
				st.Min = v
			}
		}
		st.Mean = sum / float64(len(values))
		st.Std = sampleStd(values, st.Mean)
		out = append(out, st)
	}
	return out
}

func sampleStd(values []int, mean float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	var sq float64
	for _, v := range values {
		d := float64(v) - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(values)-1))
}

// Summarize counts records, distinct days and samples, and the defect range.
func Summarize(records []model.DefectRecord) model.Summary {
	if len(records) == 0 {
		return model.Summary{}
	}
	days := make(map[int]struct{})
	samples := make(map[string]struct{})
	sum := model.Summary{
		Records:    len(records),
		MinDefects: records[0].Defects,
		MaxDefects: records[0].Defects,
	}
	for _, rec := range records {
		days[rec.Day] = struct{}{}
		samples[rec.Sample] = struct{}{}
		if rec.Defects < sum.MinDefects {
			sum.MinDefects = rec.Defects
		}
		if rec.Defects > sum.MaxDefects {
			sum.MaxDefects = rec.Defects
		}
	}
	sum.Days = len(days)
	sum.Samples = len(samples)
	return sum
}

// DistinctDays returns the distinct days of records in ascending order.
func DistinctDays(records []model.DefectRecord) []int {
	seen := make(map[int]struct{})
	days := make([]int, 0)
	for _, rec := range records {
		if _, ok := seen[rec.Day]; ok {
			continue
		}
		seen[rec.Day] = struct{}{}
		days = append(days, rec.Day)
	}
	sort.Ints(days)
	return days
}
