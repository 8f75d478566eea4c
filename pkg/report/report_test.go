package report

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/mskreport/internal/models"
	"github.com/younsl/mskreport/pkg/plan"
)

func columnIndex(t *testing.T, column string) int {
	t.Helper()
	for i, c := range Columns() {
		if c == column {
			return i
		}
	}
	t.Fatalf("column %s not in schema", column)
	return -1
}

func provisionedDescriptor() models.ClusterDescriptor {
	created := time.Date(2024, time.June, 1, 8, 30, 5, 0, time.UTC)
	return models.ClusterDescriptor{
		AccountID:          "123456789012",
		Region:             "ap-northeast-2",
		ClusterName:        "orders",
		ClusterArn:         "arn:aws:kafka:ap-northeast-2:123456789012:cluster/orders/abc-1",
		Kind:               models.ClusterKindProvisioned,
		State:              "ACTIVE",
		CreationTime:       &created,
		KafkaVersion:       "3.6.0",
		BrokerNodes:        aws.Int32(6),
		BrokerInstanceType: "kafka.m5.large",
		AvailabilityZones:  aws.Int32(3),
		StoragePerBrokerGB: aws.Int32(1000),
		Authentication:     "IAM, mTLS",
		LogsDestination:    "CloudWatch Logs (/msk/orders)",
		LogGroup:           "/msk/orders",
	}
}

func serverlessDescriptor() models.ClusterDescriptor {
	return models.ClusterDescriptor{
		AccountID:   "123456789012",
		Region:      "us-east-1",
		ClusterName: "events",
		ClusterArn:  "arn:aws:kafka:us-east-1:123456789012:cluster/events/def-s1",
		Kind:        models.ClusterKindServerless,
		State:       "ACTIVE",
	}
}

func TestColumnsLayout(t *testing.T) {
	columns := Columns()
	require.Len(t, columns, 32)

	want := []string{
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
		ColumnBrokerLogBytes,
		ColumnMonthlyCost,
	}
	assert.Equal(t, want, columns[:16])
	assert.Equal(t, plan.MetricColumns(), columns[16:])
}

func TestNormalizePadsEveryColumn(t *testing.T) {
	cells := map[string]models.MetricValue{
		plan.AvgColumn(plan.ColumnBytesIn):  models.MetricOf(1024),
		plan.PeakColumn(plan.ColumnBytesIn): models.MetricOf(4096),
	}

	row := Normalize(serverlessDescriptor(), cells)

	assert.Equal(t, models.MetricOf(1024), row.Cells[plan.AvgColumn(plan.ColumnBytesIn)])
	for _, column := range plan.MetricColumns() {
		_, ok := row.Cells[column]
		assert.True(t, ok, "column %s missing after normalization", column)
	}
	assert.Equal(t, models.NotApplicable(), row.Cells["GlobalPartitionCount"])
	assert.Equal(t, models.NotApplicable(), row.Cells[ColumnBrokerLogBytes])
	assert.Equal(t, models.NotApplicable(), row.Cells[ColumnMonthlyCost])

	// The caller's map stays untouched.
	assert.Len(t, cells, 2)
}

func TestRecordProvisionedRow(t *testing.T) {
	cells := map[string]models.MetricValue{
		"GlobalPartitionCount":                    models.MetricOf(402),
		"GlobalTopicCount":                        models.MetricOf(57),
		plan.AvgColumn("StorageUsedPercent"):      models.MetricOf(41.25),
		plan.PeakColumn("StorageUsedPercent"):     models.MetricOf(63),
		plan.AvgColumn(plan.ColumnBytesIn):        models.MetricOf(1536.5),
		plan.PeakColumn(plan.ColumnBytesIn):       models.MetricOf(8192),
		plan.AvgColumn("ClientConnectionCount"):   models.Failed(),
		plan.PeakColumn("ClientConnectionCount"):  models.Failed(),
		plan.AvgColumn("ConnectionCreationRate"):  models.NoData(),
		plan.PeakColumn("ConnectionCreationRate"): models.NoData(),
		ColumnBrokerLogBytes:                      models.MetricOf(1048576),
		ColumnMonthlyCost:                         models.MetricOf(459.9),
	}
	row := Normalize(provisionedDescriptor(), cells)

	record := Record(row)
	require.Len(t, record, len(Columns()))

	assert.Equal(t, "123456789012", record[columnIndex(t, "AccountID")])
	assert.Equal(t, "ap-northeast-2", record[columnIndex(t, "Region")])
	assert.Equal(t, "orders", record[columnIndex(t, "ClusterName")])
	assert.Equal(t, "Provisioned", record[columnIndex(t, "ClusterType")])
	assert.Equal(t, "ACTIVE", record[columnIndex(t, "State")])
	assert.Equal(t, "2024-06-01 08:30:05", record[columnIndex(t, "CreationTime")])
	assert.Equal(t, "3.6.0", record[columnIndex(t, "KafkaVersion")])
	assert.Equal(t, "6", record[columnIndex(t, "NumberOfBrokerNodes")])
	assert.Equal(t, "kafka.m5.large", record[columnIndex(t, "BrokerInstanceType")])
	assert.Equal(t, "3", record[columnIndex(t, "NumberOfAvailabilityZones")])
	assert.Equal(t, "1000", record[columnIndex(t, "StoragePerBrokerGB")])
	assert.Equal(t, "IAM, mTLS", record[columnIndex(t, "Authentication")])
	assert.Equal(t, "CloudWatch Logs (/msk/orders)", record[columnIndex(t, "BrokerLogsDestination")])

	assert.Equal(t, "402", record[columnIndex(t, "GlobalPartitionCount")])
	assert.Equal(t, "41.25", record[columnIndex(t, plan.AvgColumn("StorageUsedPercent"))])
	assert.Equal(t, "63", record[columnIndex(t, plan.PeakColumn("StorageUsedPercent"))])
	assert.Equal(t, "1536.5", record[columnIndex(t, plan.AvgColumn(plan.ColumnBytesIn))])
	assert.Equal(t, "1048576", record[columnIndex(t, ColumnBrokerLogBytes)])
	assert.Equal(t, "459.9", record[columnIndex(t, ColumnMonthlyCost)])

	// Failed queries and empty windows render differently on purpose.
	assert.Equal(t, "ERROR", record[columnIndex(t, plan.AvgColumn("ClientConnectionCount"))])
	assert.Equal(t, "N/A", record[columnIndex(t, plan.AvgColumn("ConnectionCreationRate"))])
	// Columns no collector touched fall back to N/A as well.
	assert.Equal(t, "N/A", record[columnIndex(t, plan.AvgColumn("RequestBytesMean"))])
}

func TestRecordServerlessRow(t *testing.T) {
	cells := map[string]models.MetricValue{
		plan.AvgColumn(plan.ColumnBytesIn):   models.MetricOf(100),
		plan.PeakColumn(plan.ColumnBytesIn):  models.MetricOf(200),
		plan.AvgColumn(plan.ColumnBytesOut):  models.MetricOf(300),
		plan.PeakColumn(plan.ColumnBytesOut): models.MetricOf(400),
	}
	row := Normalize(serverlessDescriptor(), cells)

	record := Record(row)
	require.Len(t, record, len(Columns()))

	assert.Equal(t, "Serverless", record[columnIndex(t, "ClusterType")])
	// Attributes serverless clusters do not have render as N/A, never zero.
	assert.Equal(t, "N/A", record[columnIndex(t, "CreationTime")])
	assert.Equal(t, "N/A", record[columnIndex(t, "KafkaVersion")])
	assert.Equal(t, "N/A", record[columnIndex(t, "NumberOfBrokerNodes")])
	assert.Equal(t, "N/A", record[columnIndex(t, "BrokerInstanceType")])
	assert.Equal(t, "N/A", record[columnIndex(t, "StoragePerBrokerGB")])
	assert.Equal(t, "N/A", record[columnIndex(t, "Authentication")])
	assert.Equal(t, "N/A", record[columnIndex(t, "GlobalPartitionCount")])
	assert.Equal(t, "N/A", record[columnIndex(t, plan.AvgColumn("StorageUsedPercent"))])

	assert.Equal(t, "100", record[columnIndex(t, plan.AvgColumn(plan.ColumnBytesIn))])
	assert.Equal(t, "400", record[columnIndex(t, plan.PeakColumn(plan.ColumnBytesOut))])
}

func TestMergeSkipsFailedRegions(t *testing.T) {
	listErr := errors.New("ListClusters: AccessDeniedException")
	results := []RegionResult{
		{
			Region: "ap-northeast-2",
			Rows:   []models.ReportRow{Normalize(provisionedDescriptor(), nil)},
			Failures: []models.ClusterFailure{
				{Region: "ap-northeast-2", ClusterArn: "arn:undescribable", Err: errors.New("InternalServerErrorException")},
			},
		},
		{
			Region: "eu-west-1",
			// A region that failed to list never yields rows, even when the
			// slot carries leftovers.
			Rows: []models.ReportRow{Normalize(serverlessDescriptor(), nil)},
			Err:  listErr,
		},
		{
			Region: "us-east-1",
			Rows:   []models.ReportRow{Normalize(serverlessDescriptor(), nil)},
		},
	}

	rows, failures := Merge(results)

	// The failed region contributes nothing; the other regions keep their
	// rows in scan order.
	require.Len(t, rows, 2)
	assert.Equal(t, "ap-northeast-2", rows[0].Cluster.Region)
	assert.Equal(t, "us-east-1", rows[1].Cluster.Region)

	require.Len(t, failures, 1)
	assert.Equal(t, "arn:undescribable", failures[0].ClusterArn)
}

func TestMergeAllRegionsFailed(t *testing.T) {
	rows, failures := Merge([]RegionResult{
		{Region: "eu-west-1", Err: errors.New("listing failed")},
		{Region: "us-east-1", Err: errors.New("listing failed")},
	})

	assert.Empty(t, rows)
	assert.Empty(t, failures)
}

func TestAssemblePreservesOrder(t *testing.T) {
	apNortheast := []models.ReportRow{
		Normalize(provisionedDescriptor(), nil),
	}
	usEast := []models.ReportRow{
		Normalize(serverlessDescriptor(), nil),
	}

	rows := Assemble([][]models.ReportRow{apNortheast, usEast})

	require.Len(t, rows, 2)
	assert.Equal(t, "orders", rows[0].Cluster.ClusterName)
	assert.Equal(t, "events", rows[1].Cluster.ClusterName)

	assert.Empty(t, Assemble(nil))
}
