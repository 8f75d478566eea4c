package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/mskreport/internal/models"
)

func TestForKindProvisioned(t *testing.T) {
	specs := ForKind(models.ClusterKindProvisioned)
	require.Len(t, specs, 9)

	byColumn := make(map[string]MetricSpec, len(specs))
	for _, s := range specs {
		byColumn[s.Column] = s
	}

	storage := byColumn["StorageUsedPercent"]
	assert.Equal(t, "KafkaDataLogsDiskUsed", storage.Metric)
	assert.Equal(t, "AWS/Kafka", storage.Namespace)
	assert.Equal(t, "Percent", storage.Unit)
	assert.Equal(t, AverageBrokers, storage.Mode)

	partitions := byColumn["GlobalPartitionCount"]
	assert.Equal(t, "GlobalPartitionCount", partitions.Metric)
	assert.Equal(t, "Count", partitions.Unit)
	assert.Equal(t, LatestValue, partitions.Mode)

	topics := byColumn["GlobalTopicCount"]
	assert.Equal(t, LatestValue, topics.Mode)

	bytesIn := byColumn[ColumnBytesIn]
	assert.Equal(t, "Bytes/Second", bytesIn.Unit)
	assert.Equal(t, SumBrokers, bytesIn.Mode)

	connections := byColumn["ClientConnectionCount"]
	assert.Equal(t, "Count", connections.Unit)
	assert.Equal(t, SumBrokers, connections.Mode)

	requestBytes := byColumn["RequestBytesMean"]
	assert.Equal(t, "Bytes", requestBytes.Unit)
	assert.Equal(t, AverageBrokers, requestBytes.Mode)
}

func TestForKindServerless(t *testing.T) {
	specs := ForKind(models.ClusterKindServerless)
	require.Len(t, specs, 2)

	for _, s := range specs {
		assert.Equal(t, "AWS/Kafka-Serverless", s.Namespace)
		assert.Equal(t, "Bytes/Second", s.Unit)
		assert.Equal(t, AggregateWindow, s.Mode)
	}
	assert.Equal(t, ColumnBytesIn, specs[0].Column)
	assert.Equal(t, ColumnBytesOut, specs[1].Column)
}

func TestSpecColumns(t *testing.T) {
	gauge := MetricSpec{Column: "GlobalTopicCount", Mode: LatestValue}
	assert.Equal(t, []string{"GlobalTopicCount"}, gauge.Columns())

	rate := MetricSpec{Column: ColumnBytesIn, Mode: SumBrokers}
	assert.Equal(t, []string{"BytesInPerSec_Avg", "BytesInPerSec_Peak"}, rate.Columns())
}

func TestMetricColumnsOrder(t *testing.T) {
	want := []string{
		"GlobalPartitionCount",
		"GlobalTopicCount",
		"StorageUsedPercent_Avg",
		"BytesInPerSec_Avg",
		"BytesOutPerSec_Avg",
		"ClientConnectionCount_Avg",
		"ConnectionCloseRate_Avg",
		"ConnectionCreationRate_Avg",
		"RequestBytesMean_Avg",
		"StorageUsedPercent_Peak",
		"BytesInPerSec_Peak",
		"BytesOutPerSec_Peak",
		"ClientConnectionCount_Peak",
		"ConnectionCloseRate_Peak",
		"ConnectionCreationRate_Peak",
		"RequestBytesMean_Peak",
	}
	assert.Equal(t, want, MetricColumns())

	// Byte-rate columns are shared between both cluster kinds and must not
	// repeat in the schema.
	assert.Equal(t, MetricColumns(), MetricColumns())
}
