package stats

import (
	"testing"
	"time"

	"github.com/verte-zerg/defectviz/internal/model"
)

func TestTimeline(t *testing.T) {
	records := []model.DefectRecord{
		{Day: 2, Sample: "08:30", Defects: 4},
		{Day: 1, Sample: "09:45", Defects: 1},
		{Day: 2, Sample: "10:00", Defects: 6},
	}
	frames, err := Timeline(records)
	if err != nil {
		t.Fatalf("Timeline failed: %v", err)
	}
	if len(frames) != 2 || frames[0].Day != 1 || frames[1].Day != 2 {
		t.Fatalf("expected frames for days 1 and 2 in order, got %+v", frames)
	}
	if frames[0].Label != "Day 1" {
		t.Fatalf("unexpected label %q", frames[0].Label)
	}
	p := frames[0].Points[0]
	if p.Hour != 9.75 {
		t.Fatalf("expected hour 9.75, got %v", p.Hour)
	}
	want := time.Date(2025, time.September, 1, 9, 45, 0, 0, time.UTC)
	if !p.At.Equal(want) {
		t.Fatalf("expected %v, got %v", want, p.At)
	}
	if len(frames[1].Points) != 2 || frames[1].Points[0].Sample != "08:30" {
		t.Fatalf("points not in input order: %+v", frames[1].Points)
	}
	if got := TimelineMaxY(frames); got != 8 {
		t.Fatalf("expected max y 8, got %d", got)
	}
}

func TestTimelineBadSample(t *testing.T) {
	_, err := Timeline([]model.DefectRecord{{Day: 1, Sample: "morning", Defects: 1}})
	if err == nil {
		t.Fatalf("expected error for non HH:MM sample")
	}
}

func TestTimelineEmpty(t *testing.T) {
	frames, err := Timeline(nil)
	if err != nil || len(frames) != 0 {
		t.Fatalf("expected no frames, got %v %v", frames, err)
	}
}
