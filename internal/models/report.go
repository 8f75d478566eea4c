package models

// ReportRow is one fully normalized report line: the cluster identity plus
// every metric and enrichment cell keyed by column name. Lookups of columns
// that were never set yield the zero MetricValue, which renders as "N/A".
type ReportRow struct {
	Cluster ClusterDescriptor
	Cells   map[string]MetricValue
}
