package chart

import (
	"sort"
	"time"

	"github.com/diwise/sensor-report/domain"
)

const (
	CH4DangerThreshold float64 = 75
	CODangerThreshold  float64 = 1000
)

type Point struct {
	Timestamp time.Time
	Value     float64
}

// Threshold is a horizontal reference line drawn across a panel.
type Threshold struct {
	Value float64
	Label string
}

type Panel struct {
	Quantity  domain.Quantity
	Title     string
	Unit      string
	Threshold *Threshold
	Points    []Point
}

// Report owns the five panels of one generated image. It is built for a
// single render and never shared.
type Report struct {
	Interval    string
	Window      time.Duration
	GeneratedAt time.Time

	panels []*Panel
}

func NewReport(intervalName string, window time.Duration, now time.Time) *Report {
	return &Report{
		Interval:    intervalName,
		Window:      window,
		GeneratedAt: now,
		panels: []*Panel{
			{Quantity: domain.Temperature, Title: "Temperature", Unit: "°C"},
			{Quantity: domain.Pressure, Title: "Pressure", Unit: "hPa"},
			{Quantity: domain.CH4, Title: "CH4", Unit: "ppm", Threshold: &Threshold{Value: CH4DangerThreshold, Label: "CH4 danger threshold"}},
			{Quantity: domain.CO, Title: "CO", Unit: "ppm", Threshold: &Threshold{Value: CODangerThreshold, Label: "CO danger threshold"}},
			{Quantity: domain.Humidity, Title: "Humidity", Unit: "%"},
		},
	}
}

// Compose builds a report from readings that already passed the window filter.
// Readings are sorted by timestamp first, the store gives no order guarantee.
func Compose(intervalName string, window time.Duration, now time.Time, readings []domain.Reading) *Report {
	sorted := make([]domain.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	r := NewReport(intervalName, window, now)
	for _, reading := range sorted {
		r.add(reading)
	}
	return r
}

func (r *Report) add(reading domain.Reading) {
	for _, p := range r.panels {
		p.Points = append(p.Points, Point{Timestamp: reading.Timestamp, Value: reading.Value(p.Quantity)})
	}
}

func (r *Report) Panel(q domain.Quantity) *Panel {
	for _, p := range r.panels {
		if p.Quantity == q {
			return p
		}
	}
	return nil
}

func (r *Report) Panels() []*Panel {
	return r.panels
}

func (r *Report) Title() string {
	return "Readings for last " + r.Interval + " on " + r.GeneratedAt.Format("2006/01/02, 15:04:05")
}

func (r *Report) Filename() string {
	return "data_" + r.GeneratedAt.Format("2006_01_02_15_04_05") + ".png"
}

// TimeRange spans the report window, widened to cover any point outside it.
func (r *Report) TimeRange() (time.Time, time.Time) {
	start, end := r.GeneratedAt.Add(-r.Window), r.GeneratedAt
	for _, p := range r.panels {
		for _, pt := range p.Points {
			if pt.Timestamp.Before(start) {
				start = pt.Timestamp
			}
			if pt.Timestamp.After(end) {
				end = pt.Timestamp
			}
		}
	}
	if !end.After(start) {
		end = start.Add(time.Second)
	}
	return start, end
}

// ValueRange returns the y axis bounds needed to show every point and the
// threshold line, with a small margin.
func (p *Panel) ValueRange() (float64, float64) {
	values := make([]float64, 0, len(p.Points)+1)
	for _, pt := range p.Points {
		values = append(values, pt.Value)
	}
	if p.Threshold != nil {
		values = append(values, p.Threshold.Value)
	}

	if len(values) == 0 {
		return 0, 1
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return lo - 1, hi + 1
	}

	margin := (hi - lo) * 0.05
	return lo - margin, hi + margin
}
