package interval

import (
	"fmt"
	"time"

	"github.com/diwise/sensor-report/domain"
)

type Interval string

const (
	Cycle Interval = "cycle"
	Hour  Interval = "hour"
	Day   Interval = "day"
	Week  Interval = "week"
	Month Interval = "month"
)

// All lists the recognized intervals in ascending length.
var All = []Interval{Cycle, Hour, Day, Week, Month}

var durations = map[Interval]time.Duration{
	Cycle: 10 * time.Minute,
	Hour:  time.Hour,
	Day:   24 * time.Hour,
	Week:  7 * 24 * time.Hour,
	Month: 30 * 24 * time.Hour,
}

func init() {
	if len(durations) != len(All) {
		panic(fmt.Sprintf("interval table has %d entries, expected %d", len(durations), len(All)))
	}
	for _, i := range All {
		if d, ok := durations[i]; !ok || d <= 0 {
			panic(fmt.Sprintf("interval %q has no duration", i))
		}
	}
}

func Resolve(name string) (time.Duration, error) {
	d, ok := durations[Interval(name)]
	if !ok {
		return 0, domain.UnknownIntervalError{Name: name}
	}
	return d, nil
}
