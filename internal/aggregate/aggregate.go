// Package aggregate keeps running statistics over ingested records.
//
// A Field summarizes one numeric series (count, sum, min, max) with
// optional DDSketch percentiles. A Summary holds one Field per numeric
// record attribute plus per-kind counters.
package aggregate

import (
	"math"

	"github.com/DataDog/sketches-go/ddsketch"

	"github.com/xtxerr/sensorring/internal/record"
)

// Field maintains running statistics for one numeric series.
type Field struct {
	count int64
	sum   float64
	min   float64
	max   float64

	// DDSketch for percentiles (nil if disabled)
	sketch *ddsketch.DDSketch
}

// NewField creates a Field. accuracy <= 0 disables percentiles.
func NewField(accuracy float64) *Field {
	f := &Field{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}

	if accuracy > 0 {
		sketch, err := ddsketch.NewDefaultDDSketch(accuracy)
		if err == nil {
			f.sketch = sketch
		}
	}

	return f
}

// Add adds a value to the field.
func (f *Field) Add(value float64) {
	f.count++
	f.sum += value

	if value < f.min {
		f.min = value
	}
	if value > f.max {
		f.max = value
	}

	if f.sketch != nil {
		_ = f.sketch.Add(value)
	}
}

// Count returns the number of values added.
func (f *Field) Count() int64 {
	return f.count
}

// Result returns the field's statistics.
func (f *Field) Result() FieldResult {
	result := FieldResult{Count: f.count, Sum: f.sum}

	if f.count > 0 {
		result.Avg = f.sum / float64(f.count)
		result.Min = f.min
		result.Max = f.max
	}

	if f.sketch != nil && f.count > 0 {
		p50, _ := f.sketch.GetValueAtQuantile(0.50)
		p90, _ := f.sketch.GetValueAtQuantile(0.90)
		p99, _ := f.sketch.GetValueAtQuantile(0.99)
		result.P50 = &p50
		result.P90 = &p90
		result.P99 = &p99
	}

	return result
}

// FieldResult holds the statistics of one Field.
// Percentiles are nil when disabled or when no values were added.
type FieldResult struct {
	Count int64
	Sum   float64
	Avg   float64
	Min   float64
	Max   float64
	P50   *float64
	P90   *float64
	P99   *float64
}

// HasPercentiles returns true if percentile values are present.
func (r FieldResult) HasPercentiles() bool {
	return r.P50 != nil
}

// Summary aggregates every record the pipeline has accepted.
type Summary struct {
	accuracy float64

	kinds   map[record.Kind]int64
	skipped int64
	settOn  int64

	Battery   *Field
	Rate      *Field
	Longitude *Field
	Latitude  *Field
}

// NewSummary creates an empty Summary. accuracy <= 0 disables percentiles.
func NewSummary(accuracy float64) *Summary {
	s := &Summary{accuracy: accuracy}
	s.Reset()
	return s
}

// Add folds one accepted record into the summary.
func (s *Summary) Add(rec record.Record) {
	switch r := rec.(type) {
	case record.GPS:
		s.Longitude.Add(r.Longitude)
		s.Latitude.Add(r.Latitude)
	case record.Telemetry:
		s.Battery.Add(float64(r.BatteryPercent))
	case record.Settings:
		s.Rate.Add(float64(r.Rate))
		if r.On {
			s.settOn++
		}
	default:
		return
	}
	s.kinds[rec.Kind()]++
}

// AddSkipped counts one input line that was rejected by classification.
func (s *Summary) AddSkipped() {
	s.skipped++
}

// Reset discards all accumulated statistics.
func (s *Summary) Reset() {
	s.kinds = make(map[record.Kind]int64, len(record.Kinds))
	s.skipped = 0
	s.settOn = 0
	s.Battery = NewField(s.accuracy)
	s.Rate = NewField(s.accuracy)
	s.Longitude = NewField(s.accuracy)
	s.Latitude = NewField(s.accuracy)
}

// Report is a point-in-time copy of a Summary.
type Report struct {
	Accepted   int64
	Skipped    int64
	ByKind     map[record.Kind]int64
	SettingsOn int64
	Battery    FieldResult
	Rate       FieldResult
	Longitude  FieldResult
	Latitude   FieldResult
}

// Report returns the current statistics.
func (s *Summary) Report() Report {
	r := Report{
		Skipped:    s.skipped,
		ByKind:     make(map[record.Kind]int64, len(s.kinds)),
		SettingsOn: s.settOn,
		Battery:    s.Battery.Result(),
		Rate:       s.Rate.Result(),
		Longitude:  s.Longitude.Result(),
		Latitude:   s.Latitude.Result(),
	}
	for k, n := range s.kinds {
		r.ByKind[k] = n
		r.Accepted += n
	}
	return r
}
