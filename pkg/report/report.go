// Package report normalizes scan results into the fixed report schema and
// writes the CSV deliverable.
package report

import (
	"strconv"
	"time"

	"github.com/younsl/mskreport/internal/models"
	"github.com/younsl/mskreport/pkg/plan"
)

const (
	timeLayout   = "2006-01-02 15:04:05"
	notAvailable = "N/A"
)

// Columns populated from the cluster descriptor itself.
var identityColumns = []string{
	"AccountID",
	"Region",
	"ClusterName",
	"ClusterArn",
	"ClusterType",
	"State",
	"CreationTime",
	"KafkaVersion",
	"NumberOfBrokerNodes",
	"BrokerInstanceType",
	"NumberOfAvailabilityZones",
	"StoragePerBrokerGB",
	"Authentication",
	"BrokerLogsDestination",
}

// Columns filled by collectors other than the metrics fetcher.
const (
	ColumnBrokerLogBytes = "BrokerLogBytes"
	ColumnMonthlyCost    = "EstMonthlyCostUSD"
)

var enrichmentColumns = []string{
	ColumnBrokerLogBytes,
	ColumnMonthlyCost,
}

// Columns returns the full report schema in its fixed order. Every row
// carries every column regardless of cluster kind.
func Columns() []string {
	metricColumns := plan.MetricColumns()
	columns := make([]string, 0, len(identityColumns)+len(enrichmentColumns)+len(metricColumns))
	columns = append(columns, identityColumns...)
	columns = append(columns, enrichmentColumns...)
	columns = append(columns, metricColumns...)
	return columns
}

// Normalize builds the report row for one cluster, padding every metric and
// enrichment column the collectors never touched so rows from different
// cluster kinds stay column-compatible.
func Normalize(cluster models.ClusterDescriptor, cells map[string]models.MetricValue) models.ReportRow {
	normalized := make(map[string]models.MetricValue, len(cells))
	for column, cell := range cells {
		normalized[column] = cell
	}
	for _, column := range enrichmentColumns {
		if _, ok := normalized[column]; !ok {
			normalized[column] = models.NotApplicable()
		}
	}
	for _, column := range plan.MetricColumns() {
		if _, ok := normalized[column]; !ok {
			normalized[column] = models.NotApplicable()
		}
	}
	return models.ReportRow{Cluster: cluster, Cells: normalized}
}

// Assemble flattens per-region results into the final row set, preserving
// region order and the cluster order within each region.
func Assemble(perRegion [][]models.ReportRow) []models.ReportRow {
	var rows []models.ReportRow
	for _, regionRows := range perRegion {
		rows = append(rows, regionRows...)
	}
	return rows
}

// RegionResult is the outcome of scanning one region.
type RegionResult struct {
	Region   string
	Rows     []models.ReportRow
	Failures []models.ClusterFailure
	Err      error
}

// Merge folds per-region outcomes into the final row set. A region whose
// scan failed contributes nothing; the remaining regions still make the
// report, in their scan order.
func Merge(results []RegionResult) ([]models.ReportRow, []models.ClusterFailure) {
	var perRegion [][]models.ReportRow
	var failures []models.ClusterFailure
	for _, result := range results {
		if result.Err != nil {
			continue
		}
		perRegion = append(perRegion, result.Rows)
		failures = append(failures, result.Failures...)
	}
	return Assemble(perRegion), failures
}

// Record renders one row in Columns() order.
func Record(row models.ReportRow) []string {
	c := row.Cluster
	record := []string{
		orNA(c.AccountID),
		orNA(c.Region),
		orNA(c.ClusterName),
		orNA(c.ClusterArn),
		orNA(string(c.Kind)),
		orNA(c.State),
		formatTime(c.CreationTime),
		orNA(c.KafkaVersion),
		formatCount(c.BrokerNodes),
		orNA(c.BrokerInstanceType),
		formatCount(c.AvailabilityZones),
		formatCount(c.StoragePerBrokerGB),
		orNA(c.Authentication),
		orNA(c.LogsDestination),
	}
	for _, column := range enrichmentColumns {
		record = append(record, row.Cells[column].String())
	}
	for _, column := range plan.MetricColumns() {
		record = append(record, row.Cells[column].String())
	}
	return record
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return notAvailable
	}
	return t.Format(timeLayout)
}

func formatCount(n *int32) string {
	if n == nil {
		return notAvailable
	}
	return strconv.FormatInt(int64(*n), 10)
}
