// Package generator builds synthetic defect datasets for demos.
package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/defectviz/internal/model"
)

// Generator produces randomized defect records.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Options shapes a generated dataset.
type Options struct {
	Days     int
	Start    time.Duration
	End      time.Duration
	Step     time.Duration
	BaseRate float64
}

// DefaultOptions mirrors a two-week 08:00 to 16:00 shift sampled every 30 minutes.
func DefaultOptions() Options {
	return Options{
		Days:     14,
		Start:    8 * time.Hour,
		End:      16 * time.Hour,
		Step:     30 * time.Minute,
		BaseRate: 3,
	}
}

// Samples returns the HH:MM labels from start to end inclusive.
func Samples(start, end, step time.Duration) ([]string, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be > 0")
	}
	if start < 0 || end >= 24*time.Hour || end < start {
		return nil, fmt.Errorf("invalid sample window %s-%s", start, end)
	}
	var out []string
	for t := start; t <= end; t += step {
		minutes := int(t / time.Minute)
		out = append(out, fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
	}
	return out, nil
}

// Generate returns one record per (day, sample), days ascending from 1.
// Counts follow a Poisson draw whose rate rises toward the end of a shift.
func (g *Generator) Generate(opts Options) ([]model.DefectRecord, error) {
	if opts.Days <= 0 {
		return nil, fmt.Errorf("days must be > 0")
	}
	if opts.BaseRate < 0 {
		return nil, fmt.Errorf("base rate must be >= 0")
	}
	samples, err := Samples(opts.Start, opts.End, opts.Step)
	if err != nil {
		return nil, err
	}
	records := make([]model.DefectRecord, 0, opts.Days*len(samples))
	for day := 1; day <= opts.Days; day++ {
		dayFactor := 0.75 + g.rnd.Float64()*0.5
		for i, sample := range samples {
			progress := 0.0
			if len(samples) > 1 {
				progress = float64(i) / float64(len(samples)-1)
			}
			rate := opts.BaseRate * dayFactor * (0.8 + 0.6*progress)
			records = append(records, model.DefectRecord{
				Day:     day,
				Sample:  sample,
				Defects: g.poisson(rate),
			})
		}
	}
	return records, nil
}

// poisson draws using Knuth's method; fine for the small rates used here.
func (g *Generator) poisson(rate float64) int {
	if rate <= 0 {
		return 0
	}
	limit := math.Exp(-rate)
	k := 0
	p := 1.0
	for {
		p *= g.rnd.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
