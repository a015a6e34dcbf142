package domain

import "time"

// Record is a single child of a node's log collection as stored remotely.
// Quantities are pointers so that an absent field can be told apart from a zero reading.
type Record struct {
	Temperature *float64 `json:"temperature"`
	Pressure    *float64 `json:"pressure"`
	CH4         *float64 `json:"ch4"`
	CO          *float64 `json:"co"`
	Humidity    *float64 `json:"humidity"`
}

// NodeLogs maps a timestamp key (YYYY-MM-DD-HH-MM-SS) to the record logged at that time.
type NodeLogs map[string]Record

type Reading struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
	CH4         float64   `json:"ch4"`
	CO          float64   `json:"co"`
	Humidity    float64   `json:"humidity"`
}

type Quantity string

const (
	Temperature Quantity = "temperature"
	Pressure    Quantity = "pressure"
	CH4         Quantity = "ch4"
	CO          Quantity = "co"
	Humidity    Quantity = "humidity"
)

// Quantities lists every measured quantity in panel order.
var Quantities = []Quantity{Temperature, Pressure, CH4, CO, Humidity}

func (r Reading) Value(q Quantity) float64 {
	switch q {
	case Temperature:
		return r.Temperature
	case Pressure:
		return r.Pressure
	case CH4:
		return r.CH4
	case CO:
		return r.CO
	case Humidity:
		return r.Humidity
	}
	return 0
}
