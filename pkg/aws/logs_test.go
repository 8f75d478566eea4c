package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/stretchr/testify/assert"

	"github.com/younsl/mskreport/internal/models"
)

type fakeLogGroups struct {
	calls    int
	describe func(params *cloudwatchlogs.DescribeLogGroupsInput) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
}

func (f *fakeLogGroups) DescribeLogGroups(ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
	f.calls++
	return f.describe(params)
}

func logGroup(name string, storedBytes int64) cwltypes.LogGroup {
	return cwltypes.LogGroup{
		LogGroupName: aws.String(name),
		StoredBytes:  aws.Int64(storedBytes),
	}
}

func testInspector(fake *fakeLogGroups) *LogsInspector {
	return &LogsInspector{Client: fake, Retry: RetryPolicy{MaxAttempts: 1}}
}

func TestLogGroupStoredBytesExactMatch(t *testing.T) {
	fake := &fakeLogGroups{describe: func(params *cloudwatchlogs.DescribeLogGroupsInput) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
		assert.Equal(t, "/msk/orders", aws.ToString(params.LogGroupNamePrefix))
		// Prefix matching also returns sibling groups; only the exact name
		// counts.
		return &cloudwatchlogs.DescribeLogGroupsOutput{LogGroups: []cwltypes.LogGroup{
			logGroup("/msk/orders-dlq", 999),
			logGroup("/msk/orders", 1048576),
		}}, nil
	}}

	v := testInspector(fake).LogGroupStoredBytes(context.Background(), "/msk/orders")

	assert.Equal(t, models.MetricOf(1048576), v)
}

func TestLogGroupStoredBytesMissingGroup(t *testing.T) {
	fake := &fakeLogGroups{describe: func(params *cloudwatchlogs.DescribeLogGroupsInput) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
		return &cloudwatchlogs.DescribeLogGroupsOutput{LogGroups: []cwltypes.LogGroup{
			logGroup("/msk/orders-dlq", 999),
		}}, nil
	}}

	v := testInspector(fake).LogGroupStoredBytes(context.Background(), "/msk/orders")

	assert.Equal(t, models.NoData(), v)
	assert.Equal(t, "N/A", v.String())
}

func TestLogGroupStoredBytesLookupFailure(t *testing.T) {
	fake := &fakeLogGroups{describe: func(params *cloudwatchlogs.DescribeLogGroupsInput) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
		return nil, errors.New("AccessDeniedException")
	}}

	v := testInspector(fake).LogGroupStoredBytes(context.Background(), "/msk/orders")

	assert.Equal(t, models.Failed(), v)
	assert.Equal(t, "ERROR", v.String())
}

func TestLogGroupStoredBytesWithoutLogGroup(t *testing.T) {
	fake := &fakeLogGroups{describe: func(params *cloudwatchlogs.DescribeLogGroupsInput) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
		return &cloudwatchlogs.DescribeLogGroupsOutput{}, nil
	}}

	v := testInspector(fake).LogGroupStoredBytes(context.Background(), "")

	assert.Equal(t, models.NotApplicable(), v)
	assert.Equal(t, "N/A", v.String())
	assert.Zero(t, fake.calls)
}
