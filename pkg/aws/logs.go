package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/younsl/mskreport/internal/models"
)

// LogGroupsAPI is the CloudWatch Logs surface the inspector needs.
type LogGroupsAPI interface {
	DescribeLogGroups(ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
}

// LogsInspector measures the broker log groups clusters deliver to.
type LogsInspector struct {
	Client LogGroupsAPI
	Retry  RetryPolicy
}

// NewLogsInspector creates an inspector for a given region
func NewLogsInspector(cfg aws.Config, retry RetryPolicy) *LogsInspector {
	return &LogsInspector{
		Client: cloudwatchlogs.NewFromConfig(cfg),
		Retry:  retry,
	}
}

// LogGroupStoredBytes returns the stored size of the cluster's broker log
// group. Clusters without CloudWatch log delivery have no group to measure,
// which is not a failure.
func (l *LogsInspector) LogGroupStoredBytes(ctx context.Context, logGroup string) models.MetricValue {
	if logGroup == "" {
		return models.NotApplicable()
	}

	// DescribeLogGroups only filters by prefix, so sibling groups sharing
	// the prefix can come back too and an exact name match is required.
	paginator := cloudwatchlogs.NewDescribeLogGroupsPaginator(l.Client, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: aws.String(logGroup),
	})
	for paginator.HasMorePages() {
		var page *cloudwatchlogs.DescribeLogGroupsOutput
		err := l.Retry.Do(ctx, func() error {
			var callErr error
			page, callErr = paginator.NextPage(ctx)
			return callErr
		})
		if err != nil {
			fmt.Printf("Warning: describing log group %s: %v\n", logGroup, err)
			return models.Failed()
		}
		for _, lg := range page.LogGroups {
			if aws.ToString(lg.LogGroupName) == logGroup {
				return models.MetricOf(float64(aws.ToInt64(lg.StoredBytes)))
			}
		}
	}
	return models.NoData()
}
