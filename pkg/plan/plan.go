// Package plan defines which CloudWatch metrics are collected for each MSK
// cluster kind and how the raw datapoints are reduced into report cells.
package plan

import (
	"github.com/younsl/mskreport/internal/models"
)

// Mode selects the query and reduction strategy for one metric.
type Mode int

const (
	// AggregateWindow queries the metric once at cluster scope over the full
	// window and reduces to mean-of-averages and max-of-maximums.
	AggregateWindow Mode = iota
	// SumBrokers queries the metric once per broker and sums the per-broker
	// averages and the per-broker peaks across the fleet.
	SumBrokers
	// AverageBrokers queries the metric once per broker, averages the
	// per-broker averages and takes the highest per-broker peak.
	AverageBrokers
	// LatestValue queries a short trailing window at high resolution and
	// keeps only the newest datapoint's maximum.
	LatestValue
)

const (
	provisionedNamespace = "AWS/Kafka"
	serverlessNamespace  = "AWS/Kafka-Serverless"
)

// Column names shared with the report and summary layers.
const (
	ColumnBytesIn  = "BytesInPerSec"
	ColumnBytesOut = "BytesOutPerSec"
)

// MetricSpec binds one report column to the CloudWatch metric that feeds it.
type MetricSpec struct {
	// Column is the report column base name. Aggregating modes derive the
	// _Avg and _Peak column pair from it.
	Column string
	// Metric is the CloudWatch metric name, usually but not always the same
	// as Column.
	Metric string
	// Namespace is the CloudWatch namespace to query.
	Namespace string
	// Unit constrains the query to datapoints published with this unit.
	// Empty means no unit filter.
	Unit string
	Mode Mode
}

var provisionedSpecs = []MetricSpec{
	{Column: "StorageUsedPercent", Metric: "KafkaDataLogsDiskUsed", Namespace: provisionedNamespace, Unit: "Percent", Mode: AverageBrokers},
	{Column: "GlobalPartitionCount", Metric: "GlobalPartitionCount", Namespace: provisionedNamespace, Unit: "Count", Mode: LatestValue},
	{Column: "GlobalTopicCount", Metric: "GlobalTopicCount", Namespace: provisionedNamespace, Unit: "Count", Mode: LatestValue},
	{Column: ColumnBytesIn, Metric: "BytesInPerSec", Namespace: provisionedNamespace, Unit: "Bytes/Second", Mode: SumBrokers},
	{Column: ColumnBytesOut, Metric: "BytesOutPerSec", Namespace: provisionedNamespace, Unit: "Bytes/Second", Mode: SumBrokers},
	{Column: "ClientConnectionCount", Metric: "ClientConnectionCount", Namespace: provisionedNamespace, Unit: "Count", Mode: SumBrokers},
	{Column: "ConnectionCloseRate", Metric: "ConnectionCloseRate", Namespace: provisionedNamespace, Unit: "Count/Second", Mode: SumBrokers},
	{Column: "ConnectionCreationRate", Metric: "ConnectionCreationRate", Namespace: provisionedNamespace, Unit: "Count/Second", Mode: SumBrokers},
	{Column: "RequestBytesMean", Metric: "RequestBytesMean", Namespace: provisionedNamespace, Unit: "Bytes", Mode: AverageBrokers},
}

var serverlessSpecs = []MetricSpec{
	{Column: ColumnBytesIn, Metric: "BytesInPerSec", Namespace: serverlessNamespace, Unit: "Bytes/Second", Mode: AggregateWindow},
	{Column: ColumnBytesOut, Metric: "BytesOutPerSec", Namespace: serverlessNamespace, Unit: "Bytes/Second", Mode: AggregateWindow},
}

// AvgColumn returns the report column holding the averaged reduction of a
// metric column.
func AvgColumn(column string) string {
	return column + "_Avg"
}

// PeakColumn returns the report column holding the peak reduction of a
// metric column.
func PeakColumn(column string) string {
	return column + "_Peak"
}

// AvgColumn returns the averaged report column for this spec.
func (s MetricSpec) AvgColumn() string {
	return AvgColumn(s.Column)
}

// PeakColumn returns the peak report column for this spec.
func (s MetricSpec) PeakColumn() string {
	return PeakColumn(s.Column)
}

// Columns returns every report column this spec produces.
func (s MetricSpec) Columns() []string {
	if s.Mode == LatestValue {
		return []string{s.Column}
	}
	return []string{s.AvgColumn(), s.PeakColumn()}
}

// ForKind returns the metric specs collected for a cluster kind.
func ForKind(kind models.ClusterKind) []MetricSpec {
	if kind == models.ClusterKindServerless {
		return serverlessSpecs
	}
	return provisionedSpecs
}

// MetricColumns returns every metric column any cluster kind can produce, in
// the report's fixed order: point-in-time columns first, then all averaged
// columns, then all peak columns. The result is deterministic across calls.
func MetricColumns() []string {
	var latest, avgs, peaks []string
	seen := make(map[string]bool)
	for _, specs := range [][]MetricSpec{provisionedSpecs, serverlessSpecs} {
		for _, s := range specs {
			if seen[s.Column] {
				continue
			}
			seen[s.Column] = true
			if s.Mode == LatestValue {
				latest = append(latest, s.Column)
				continue
			}
			avgs = append(avgs, AvgColumn(s.Column))
			peaks = append(peaks, PeakColumn(s.Column))
		}
	}
	columns := make([]string, 0, len(latest)+len(avgs)+len(peaks))
	columns = append(columns, latest...)
	columns = append(columns, avgs...)
	columns = append(columns, peaks...)
	return columns
}
