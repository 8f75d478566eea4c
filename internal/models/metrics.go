package models

import (
	"strconv"
)

// MetricState distinguishes a real measurement from the ways a measurement
// can be absent. The zero value is MetricNotApplicable so that cells never
// populated for a cluster kind render correctly without special handling.
type MetricState int

const (
	// MetricNotApplicable means the metric does not exist for this cluster
	// kind, so no query was attempted.
	MetricNotApplicable MetricState = iota
	// MetricNoData means the query succeeded but CloudWatch returned no
	// datapoints for the window.
	MetricNoData
	// MetricFailed means the query itself failed.
	MetricFailed
	// MetricOK means Value holds a real measurement.
	MetricOK
)

// MetricValue is one report cell. A missing or failed measurement is never
// represented as zero; the state carries why the value is absent.
type MetricValue struct {
	State MetricState
	Value float64
}

// MetricOf wraps a successful measurement.
func MetricOf(v float64) MetricValue {
	return MetricValue{State: MetricOK, Value: v}
}

// NoData marks a query that returned no datapoints.
func NoData() MetricValue {
	return MetricValue{State: MetricNoData}
}

// Failed marks a query that errored.
func Failed() MetricValue {
	return MetricValue{State: MetricFailed}
}

// NotApplicable marks a metric that is not defined for the cluster.
func NotApplicable() MetricValue {
	return MetricValue{State: MetricNotApplicable}
}

// String renders the cell the way it appears in the report: the shortest
// exact decimal form for measurements, "ERROR" for failed queries and
// "N/A" for everything else.
func (m MetricValue) String() string {
	switch m.State {
	case MetricOK:
		return strconv.FormatFloat(m.Value, 'f', -1, 64)
	case MetricFailed:
		return "ERROR"
	default:
		return "N/A"
	}
}
