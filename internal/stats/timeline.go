package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/verte-zerg/defectviz/internal/model"
)

// Axis bounds used by the timeline views: working hours on x, and some
// headroom above the largest count on y.
const (
	TimelineHourMin  = 8.0
	TimelineHourMax  = 16.5
	timelineHeadroom = 2

	timelineYear  = 2025
	timelineMonth = time.September
)

// Timeline groups records into one frame per day in ascending day order.
// Sample labels must be HH:MM.
func Timeline(records []model.DefectRecord) ([]model.TimelineFrame, error) {
	byDay := make(map[int][]model.TimelinePoint)
	for _, rec := range records {
		clock, err := time.Parse("15:04", rec.Sample)
		if err != nil {
			return nil, fmt.Errorf("invalid sample %q for day %d: expected HH:MM", rec.Sample, rec.Day)
		}
		byDay[rec.Day] = append(byDay[rec.Day], model.TimelinePoint{
			Sample:  rec.Sample,
			Hour:    float64(clock.Hour()) + float64(clock.Minute())/60.0,
			Defects: rec.Defects,
			At:      time.Date(timelineYear, timelineMonth, rec.Day, clock.Hour(), clock.Minute(), 0, 0, time.UTC),
		})
	}
	days := make([]int, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Ints(days)

	frames := make([]model.TimelineFrame, 0, len(days))
	for _, day := range days {
		frames = append(frames, model.TimelineFrame{
			Day:    day,
			Label:  DayLabel(day),
			Points: byDay[day],
		})
	}
	return frames, nil
}

// TimelineMaxY returns the upper y bound shared by all frames.
func TimelineMaxY(frames []model.TimelineFrame) int {
	maxVal := 0
	for _, f := range frames {
		for _, p := range f.Points {
			if p.Defects > maxVal {
				maxVal = p.Defects
			}
		}
	}
	return maxVal + timelineHeadroom
}
