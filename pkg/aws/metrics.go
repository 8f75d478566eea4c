package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/younsl/mskreport/internal/models"
	"github.com/younsl/mskreport/pkg/plan"
)

const (
	clusterDimension = "Cluster Name"
	brokerDimension  = "Broker ID"

	// latestValueLookback bounds the trailing window used for point-in-time
	// metrics; 15 minutes guarantees at least one datapoint at 60s
	// resolution even for metrics MSK publishes every 5 minutes.
	latestValueLookback = 15 * time.Minute
	latestValuePeriod   = time.Minute
)

// CloudWatchAPI is the CloudWatch surface the fetcher needs.
type CloudWatchAPI interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
}

// MetricWindow is the time range and datapoint resolution metrics are
// queried over.
type MetricWindow struct {
	Start  time.Time
	End    time.Time
	Period time.Duration
}

// NewMetricWindow builds the window ending at end and reaching back the
// given number of days.
func NewMetricWindow(end time.Time, days int, period time.Duration) MetricWindow {
	return MetricWindow{
		Start:  end.AddDate(0, 0, -days),
		End:    end,
		Period: period,
	}
}

// MetricsFetcher collects the planned CloudWatch metrics for one cluster at
// a time.
type MetricsFetcher struct {
	CW     CloudWatchAPI
	Region string
	Window MetricWindow
	Retry  RetryPolicy
}

// NewMetricsFetcher creates a fetcher for a given region
func NewMetricsFetcher(cfg aws.Config, window MetricWindow, retry RetryPolicy) *MetricsFetcher {
	return &MetricsFetcher{
		CW:     cloudwatch.NewFromConfig(cfg),
		Region: cfg.Region,
		Window: window,
		Retry:  retry,
	}
}

// CollectClusterMetrics runs every metric spec planned for the cluster's
// kind and returns the resulting report cells. Each metric degrades
// independently: a failed query marks only its own columns as failed and an
// empty result marks them as having no data, so a cluster row is never
// dropped and absent measurements are never reported as zero.
func (f *MetricsFetcher) CollectClusterMetrics(ctx context.Context, cluster models.ClusterDescriptor) map[string]models.MetricValue {
	cells := make(map[string]models.MetricValue)
	for _, spec := range plan.ForKind(cluster.Kind) {
		switch spec.Mode {
		case plan.LatestValue:
			cells[spec.Column] = f.latestValue(ctx, cluster, spec)
		case plan.SumBrokers, plan.AverageBrokers:
			cells[spec.AvgColumn()], cells[spec.PeakColumn()] = f.brokerAggregate(ctx, cluster, spec)
		default:
			cells[spec.AvgColumn()], cells[spec.PeakColumn()] = f.windowAggregate(ctx, cluster, spec)
		}
	}
	return cells
}

// windowAggregate queries the metric once at cluster scope over the whole
// window.
func (f *MetricsFetcher) windowAggregate(ctx context.Context, cluster models.ClusterDescriptor, spec plan.MetricSpec) (models.MetricValue, models.MetricValue) {
	datapoints, err := f.getDatapoints(ctx, spec, clusterDimensions(cluster), f.Window.Start, f.Window.End, f.Window.Period,
		[]cwtypes.Statistic{cwtypes.StatisticAverage, cwtypes.StatisticMaximum})
	if err != nil {
		fmt.Printf("Warning: metric %s for cluster %s in %s: %v\n", spec.Metric, cluster.ClusterName, f.Region, err)
		return models.Failed(), models.Failed()
	}

	avg, avgOK := meanAverage(datapoints)
	peak, peakOK := maxMaximum(datapoints)
	return metricCell(avg, avgOK), metricCell(peak, peakOK)
}

// brokerAggregate queries the metric once per broker ID and folds the
// per-broker averages and peaks into a single pair of cells. Brokers are
// numbered 1..N by MSK. Individual broker failures are tolerated as long as
// at least one broker returns data.
func (f *MetricsFetcher) brokerAggregate(ctx context.Context, cluster models.ClusterDescriptor, spec plan.MetricSpec) (models.MetricValue, models.MetricValue) {
	brokers := int32(0)
	if cluster.BrokerNodes != nil {
		brokers = *cluster.BrokerNodes
	}
	if brokers <= 0 {
		return models.NoData(), models.NoData()
	}

	var avgs, peaks []float64
	failed := 0
	for id := int32(1); id <= brokers; id++ {
		datapoints, err := f.getDatapoints(ctx, spec, brokerDimensions(cluster, id), f.Window.Start, f.Window.End, f.Window.Period,
			[]cwtypes.Statistic{cwtypes.StatisticAverage, cwtypes.StatisticMaximum})
		if err != nil {
			fmt.Printf("Warning: metric %s for cluster %s broker %d in %s: %v\n", spec.Metric, cluster.ClusterName, id, f.Region, err)
			failed++
			continue
		}
		if len(datapoints) == 0 {
			continue
		}
		if avg, ok := meanAverage(datapoints); ok {
			avgs = append(avgs, avg)
		}
		if peak, ok := maxMaximum(datapoints); ok {
			peaks = append(peaks, peak)
		}
	}

	if len(avgs) == 0 && len(peaks) == 0 {
		if failed > 0 {
			return models.Failed(), models.Failed()
		}
		return models.NoData(), models.NoData()
	}

	if spec.Mode == plan.SumBrokers {
		return metricCell(sum(avgs), len(avgs) > 0), metricCell(sum(peaks), len(peaks) > 0)
	}
	return metricCell(mean(avgs), len(avgs) > 0), metricCell(highest(peaks), len(peaks) > 0)
}

// latestValue queries a short trailing window at one-minute resolution and
// keeps the maximum of the newest datapoint. Used for gauges like partition
// counts where the current reading matters, not the weekly trend.
func (f *MetricsFetcher) latestValue(ctx context.Context, cluster models.ClusterDescriptor, spec plan.MetricSpec) models.MetricValue {
	start := f.Window.End.Add(-latestValueLookback)
	datapoints, err := f.getDatapoints(ctx, spec, clusterDimensions(cluster), start, f.Window.End, latestValuePeriod,
		[]cwtypes.Statistic{cwtypes.StatisticMaximum})
	if err != nil {
		fmt.Printf("Warning: metric %s for cluster %s in %s: %v\n", spec.Metric, cluster.ClusterName, f.Region, err)
		return models.Failed()
	}

	v, ok := newestMaximum(datapoints)
	return metricCell(v, ok)
}

func (f *MetricsFetcher) getDatapoints(ctx context.Context, spec plan.MetricSpec, dimensions []cwtypes.Dimension, start, end time.Time, period time.Duration, statistics []cwtypes.Statistic) ([]cwtypes.Datapoint, error) {
	input := &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(spec.Namespace),
		MetricName: aws.String(spec.Metric),
		Dimensions: dimensions,
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(period / time.Second)),
		Statistics: statistics,
	}
	if spec.Unit != "" {
		input.Unit = cwtypes.StandardUnit(spec.Unit)
	}

	var resp *cloudwatch.GetMetricStatisticsOutput
	err := f.Retry.Do(ctx, func() error {
		var callErr error
		resp, callErr = f.CW.GetMetricStatistics(ctx, input)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("GetMetricStatistics %s/%s: %w", spec.Namespace, spec.Metric, err)
	}
	return resp.Datapoints, nil
}

func clusterDimensions(cluster models.ClusterDescriptor) []cwtypes.Dimension {
	return []cwtypes.Dimension{
		{
			Name:  aws.String(clusterDimension),
			Value: aws.String(cluster.ClusterName),
		},
	}
}

func brokerDimensions(cluster models.ClusterDescriptor, brokerID int32) []cwtypes.Dimension {
	return append(clusterDimensions(cluster), cwtypes.Dimension{
		Name:  aws.String(brokerDimension),
		Value: aws.String(fmt.Sprintf("%d", brokerID)),
	})
}

// meanAverage reduces datapoints to the mean of their Average statistics.
func meanAverage(datapoints []cwtypes.Datapoint) (float64, bool) {
	var values []float64
	for _, dp := range datapoints {
		if dp.Average != nil {
			values = append(values, *dp.Average)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return mean(values), true
}

// maxMaximum reduces datapoints to the largest of their Maximum statistics.
func maxMaximum(datapoints []cwtypes.Datapoint) (float64, bool) {
	var values []float64
	for _, dp := range datapoints {
		if dp.Maximum != nil {
			values = append(values, *dp.Maximum)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return highest(values), true
}

// newestMaximum picks the Maximum of the most recent datapoint. CloudWatch
// does not order datapoints, so the timestamps decide.
func newestMaximum(datapoints []cwtypes.Datapoint) (float64, bool) {
	var newest *cwtypes.Datapoint
	for i := range datapoints {
		dp := &datapoints[i]
		if dp.Maximum == nil || dp.Timestamp == nil {
			continue
		}
		if newest == nil || dp.Timestamp.After(*newest.Timestamp) {
			newest = dp
		}
	}
	if newest == nil {
		return 0, false
	}
	return *newest.Maximum, true
}

func metricCell(v float64, ok bool) models.MetricValue {
	if !ok {
		return models.NoData()
	}
	return models.MetricOf(v)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

func highest(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	top := values[0]
	for _, v := range values[1:] {
		if v > top {
			top = v
		}
	}
	return top
}
