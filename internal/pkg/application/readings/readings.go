package readings

import (
	"sort"
	"time"

	"github.com/diwise/sensor-report/domain"
)

// TimestampLayout is the format of the keys in a node's log collection.
const TimestampLayout = "2006-01-02-15-04-05"

// IsRecent reports whether a reading taken at t is younger than window at now.
// A reading exactly window old is not recent. Readings from the future have a
// negative age and are always recent.
func IsRecent(t, now time.Time, window time.Duration) bool {
	return now.Sub(t) < window
}

// Parse converts every stored record into a Reading. Keys are interpreted in
// loc. The first malformed record, in key order, aborts the conversion.
// The result carries no chronological guarantee.
func Parse(logs domain.NodeLogs, loc *time.Location) ([]domain.Reading, error) {
	keys := make([]string, 0, len(logs))
	for k := range logs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]domain.Reading, 0, len(keys))

	for _, k := range keys {
		r, err := FromRecord(k, logs[k], loc)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}

	return result, nil
}

func FromRecord(key string, rec domain.Record, loc *time.Location) (domain.Reading, error) {
	ts, err := time.ParseInLocation(TimestampLayout, key, loc)
	if err != nil {
		return domain.Reading{}, domain.MalformedReadingError{Key: key, Reason: "timestamp is not " + TimestampLayout}
	}

	fields := []struct {
		q domain.Quantity
		v *float64
	}{
		{domain.Temperature, rec.Temperature},
		{domain.Pressure, rec.Pressure},
		{domain.CH4, rec.CH4},
		{domain.CO, rec.CO},
		{domain.Humidity, rec.Humidity},
	}

	for _, f := range fields {
		if f.v == nil {
			return domain.Reading{}, domain.MalformedReadingError{Key: key, Reason: "missing " + string(f.q)}
		}
	}

	return domain.Reading{
		Timestamp:   ts,
		Temperature: *rec.Temperature,
		Pressure:    *rec.Pressure,
		CH4:         *rec.CH4,
		CO:          *rec.CO,
		Humidity:    *rec.Humidity,
	}, nil
}

// Recent returns the readings for which IsRecent holds, keeping their order.
func Recent(all []domain.Reading, now time.Time, window time.Duration) []domain.Reading {
	result := []domain.Reading{}
	for _, r := range all {
		if IsRecent(r.Timestamp, now, window) {
			result = append(result, r)
		}
	}
	return result
}
