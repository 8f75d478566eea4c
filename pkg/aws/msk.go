package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/kafka"
	"github.com/aws/aws-sdk-go-v2/service/kafka/types"

	"github.com/younsl/mskreport/internal/models"
)

const (
	// serverlessKafkaVersion stands in for the broker version serverless
	// clusters do not expose.
	serverlessKafkaVersion = "Managed (Serverless)"
	// subnetBatchSize keeps DescribeSubnets under its request ID limit.
	subnetBatchSize = 100
)

// KafkaAPI is the MSK surface the scanner needs, covering both API
// generations. The V2 calls are tried first; V1 is the fallback for
// partitions where V2 is not deployed.
type KafkaAPI interface {
	ListClustersV2(ctx context.Context, params *kafka.ListClustersV2Input, optFns ...func(*kafka.Options)) (*kafka.ListClustersV2Output, error)
	ListClusters(ctx context.Context, params *kafka.ListClustersInput, optFns ...func(*kafka.Options)) (*kafka.ListClustersOutput, error)
	DescribeClusterV2(ctx context.Context, params *kafka.DescribeClusterV2Input, optFns ...func(*kafka.Options)) (*kafka.DescribeClusterV2Output, error)
	DescribeCluster(ctx context.Context, params *kafka.DescribeClusterInput, optFns ...func(*kafka.Options)) (*kafka.DescribeClusterOutput, error)
}

// SubnetsAPI is the EC2 surface used to count availability zones.
type SubnetsAPI interface {
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
}

// MskScanner discovers MSK clusters in one region and resolves each into a
// ClusterDescriptor.
type MskScanner struct {
	Kafka     KafkaAPI
	EC2       SubnetsAPI
	Region    string
	AccountID string
}

// NewMskScanner creates a new MskScanner for a given region
func NewMskScanner(cfg aws.Config, accountID string) *MskScanner {
	return &MskScanner{
		Kafka:     kafka.NewFromConfig(cfg),
		EC2:       ec2.NewFromConfig(cfg),
		Region:    cfg.Region,
		AccountID: accountID,
	}
}

// EnumerateClusters lists every MSK cluster in the region and describes each
// one. Clusters that cannot be described are reported as failures and the
// rest of the region still completes; a listing failure aborts the region.
func (s *MskScanner) EnumerateClusters(ctx context.Context) ([]models.ClusterDescriptor, []models.ClusterFailure, error) {
	arns, err := s.ListClusterArns(ctx)
	if err != nil {
		return nil, nil, err
	}
	clusters, failures := s.DescribeClusters(ctx, arns)
	return clusters, failures, nil
}

// ListClusterArns returns the ARNs of all clusters in the region, preferring
// ListClustersV2 because only it returns serverless clusters. When V2 is
// unavailable the V1 listing still covers provisioned clusters.
func (s *MskScanner) ListClusterArns(ctx context.Context) ([]string, error) {
	arns, v2Err := s.listClusterArnsV2(ctx)
	if v2Err == nil {
		return arns, nil
	}

	arns, v1Err := s.listClusterArnsV1(ctx)
	if v1Err == nil {
		return arns, nil
	}
	return nil, fmt.Errorf("listing MSK clusters (ListClustersV2: %v): %w", v2Err, v1Err)
}

func (s *MskScanner) listClusterArnsV2(ctx context.Context) ([]string, error) {
	var arns []string
	paginator := kafka.NewListClustersV2Paginator(s.Kafka, &kafka.ListClustersV2Input{})
	pageCount := 0
	for paginator.HasMorePages() {
		pageCount++
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageCount, err)
		}
		for _, cluster := range page.ClusterInfoList {
			if cluster.ClusterArn != nil {
				arns = append(arns, *cluster.ClusterArn)
			}
		}
	}
	return arns, nil
}

func (s *MskScanner) listClusterArnsV1(ctx context.Context) ([]string, error) {
	var arns []string
	paginator := kafka.NewListClustersPaginator(s.Kafka, &kafka.ListClustersInput{})
	pageCount := 0
	for paginator.HasMorePages() {
		pageCount++
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageCount, err)
		}
		for _, cluster := range page.ClusterInfoList {
			if cluster.ClusterArn != nil {
				arns = append(arns, *cluster.ClusterArn)
			}
		}
	}
	return arns, nil
}

// DescribeClusters resolves each ARN into a full descriptor. A cluster that
// fails to describe is skipped with a warning so one bad cluster cannot
// sink the region.
func (s *MskScanner) DescribeClusters(ctx context.Context, arns []string) ([]models.ClusterDescriptor, []models.ClusterFailure) {
	clusters := make([]models.ClusterDescriptor, 0, len(arns))
	var failures []models.ClusterFailure

	for _, arn := range arns {
		cluster, err := s.describeCluster(ctx, arn)
		if err != nil {
			fmt.Printf("Warning: could not describe MSK cluster %s in %s: %v\n", arn, s.Region, err)
			failures = append(failures, models.ClusterFailure{Region: s.Region, ClusterArn: arn, Err: err})
			continue
		}
		clusters = append(clusters, cluster)
	}
	return clusters, failures
}

func (s *MskScanner) describeCluster(ctx context.Context, arn string) (models.ClusterDescriptor, error) {
	v2, v2Err := s.Kafka.DescribeClusterV2(ctx, &kafka.DescribeClusterV2Input{ClusterArn: aws.String(arn)})
	if v2Err == nil {
		if v2.ClusterInfo != nil {
			return s.descriptorFromV2(ctx, v2.ClusterInfo), nil
		}
		v2Err = errors.New("empty DescribeClusterV2 response")
	}

	v1, v1Err := s.Kafka.DescribeCluster(ctx, &kafka.DescribeClusterInput{ClusterArn: aws.String(arn)})
	if v1Err == nil {
		if v1.ClusterInfo != nil {
			return s.descriptorFromV1(ctx, v1.ClusterInfo), nil
		}
		v1Err = errors.New("empty DescribeCluster response")
	}
	return models.ClusterDescriptor{}, fmt.Errorf("describing cluster (DescribeClusterV2: %v): %w", v2Err, v1Err)
}

func (s *MskScanner) descriptorFromV2(ctx context.Context, c *types.Cluster) models.ClusterDescriptor {
	d := models.ClusterDescriptor{
		AccountID:    s.AccountID,
		Region:       s.Region,
		ClusterName:  aws.ToString(c.ClusterName),
		ClusterArn:   aws.ToString(c.ClusterArn),
		State:        string(c.State),
		CreationTime: c.CreationTime,
	}

	if c.ClusterType == types.ClusterTypeServerless || c.Serverless != nil {
		d.Kind = models.ClusterKindServerless
		d.KafkaVersion = serverlessKafkaVersion
		d.Authentication = serverlessAuthSummary(c.Serverless)
		return d
	}

	d.Kind = models.ClusterKindProvisioned
	if p := c.Provisioned; p != nil {
		s.fillProvisioned(ctx, &d, p.CurrentBrokerSoftwareInfo, p.BrokerNodeGroupInfo, p.ClientAuthentication, p.LoggingInfo, p.NumberOfBrokerNodes)
	} else {
		d.Authentication = "N/A"
	}
	return d
}

// descriptorFromV1 maps the legacy DescribeCluster shape, which only ever
// carries provisioned clusters.
func (s *MskScanner) descriptorFromV1(ctx context.Context, c *types.ClusterInfo) models.ClusterDescriptor {
	d := models.ClusterDescriptor{
		AccountID:    s.AccountID,
		Region:       s.Region,
		ClusterName:  aws.ToString(c.ClusterName),
		ClusterArn:   aws.ToString(c.ClusterArn),
		Kind:         models.ClusterKindProvisioned,
		State:        string(c.State),
		CreationTime: c.CreationTime,
	}
	s.fillProvisioned(ctx, &d, c.CurrentBrokerSoftwareInfo, c.BrokerNodeGroupInfo, c.ClientAuthentication, c.LoggingInfo, c.NumberOfBrokerNodes)
	return d
}

func (s *MskScanner) fillProvisioned(ctx context.Context, d *models.ClusterDescriptor, software *types.BrokerSoftwareInfo, brokers *types.BrokerNodeGroupInfo, auth *types.ClientAuthentication, logging *types.LoggingInfo, nodeCount *int32) {
	d.Kind = models.ClusterKindProvisioned
	d.BrokerNodes = nodeCount
	if software != nil {
		d.KafkaVersion = aws.ToString(software.KafkaVersion)
	}
	if brokers != nil {
		d.BrokerInstanceType = aws.ToString(brokers.InstanceType)
		d.AvailabilityZones = s.availabilityZoneCount(ctx, d.ClusterArn, brokers)
		if brokers.StorageInfo != nil && brokers.StorageInfo.EbsStorageInfo != nil {
			d.StoragePerBrokerGB = brokers.StorageInfo.EbsStorageInfo.VolumeSize
		}
	}
	d.Authentication = authSummary(auth)
	d.LogsDestination, d.LogGroup = brokerLogsDestination(logging)
}

// availabilityZoneCount counts the distinct zones the brokers span. Zone IDs
// come straight from the cluster when present; otherwise the client subnets
// are resolved through EC2. If that lookup fails the subnet count itself is
// the best remaining estimate.
func (s *MskScanner) availabilityZoneCount(ctx context.Context, arn string, brokers *types.BrokerNodeGroupInfo) *int32 {
	if n := len(brokers.ZoneIds); n > 0 {
		return aws.Int32(int32(n))
	}
	subnets := brokers.ClientSubnets
	if len(subnets) == 0 {
		return nil
	}

	zones := make(map[string]bool)
	for start := 0; start < len(subnets); start += subnetBatchSize {
		end := min(start+subnetBatchSize, len(subnets))
		resp, err := s.EC2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{SubnetIds: subnets[start:end]})
		if err != nil {
			fmt.Printf("Warning: could not resolve subnets for cluster %s in %s: %v\n", arn, s.Region, err)
			return aws.Int32(int32(len(subnets)))
		}
		for _, subnet := range resp.Subnets {
			if subnet.AvailabilityZone != nil {
				zones[*subnet.AvailabilityZone] = true
			}
		}
	}
	if len(zones) == 0 {
		return aws.Int32(int32(len(subnets)))
	}
	return aws.Int32(int32(len(zones)))
}

// authSummary renders the enabled client authentication methods the way the
// report shows them, e.g. "IAM, mTLS".
func authSummary(auth *types.ClientAuthentication) string {
	if auth == nil {
		return "N/A"
	}
	var methods []string
	if auth.Sasl != nil {
		if auth.Sasl.Iam != nil && aws.ToBool(auth.Sasl.Iam.Enabled) {
			methods = append(methods, "IAM")
		}
		if auth.Sasl.Scram != nil && aws.ToBool(auth.Sasl.Scram.Enabled) {
			methods = append(methods, "SCRAM")
		}
	}
	if auth.Tls != nil && (aws.ToBool(auth.Tls.Enabled) || len(auth.Tls.CertificateAuthorityArnList) > 0) {
		methods = append(methods, "mTLS")
	}
	if auth.Unauthenticated != nil && aws.ToBool(auth.Unauthenticated.Enabled) {
		methods = append(methods, "Unauthenticated")
	}
	if len(methods) == 0 {
		return "None Enabled"
	}
	return strings.Join(methods, ", ")
}

func serverlessAuthSummary(sl *types.Serverless) string {
	if sl == nil || sl.ClientAuthentication == nil {
		return "N/A"
	}
	sasl := sl.ClientAuthentication.Sasl
	if sasl != nil && sasl.Iam != nil && aws.ToBool(sasl.Iam.Enabled) {
		return "IAM"
	}
	return "None Enabled"
}

// brokerLogsDestination summarizes where broker logs are delivered and
// returns the CloudWatch log group name when that target is enabled.
func brokerLogsDestination(logging *types.LoggingInfo) (string, string) {
	if logging == nil || logging.BrokerLogs == nil {
		return "Disabled", ""
	}
	bl := logging.BrokerLogs
	var targets []string
	logGroup := ""
	if bl.CloudWatchLogs != nil && aws.ToBool(bl.CloudWatchLogs.Enabled) {
		logGroup = aws.ToString(bl.CloudWatchLogs.LogGroup)
		targets = append(targets, fmt.Sprintf("CloudWatch Logs (%s)", logGroup))
	}
	if bl.S3 != nil && aws.ToBool(bl.S3.Enabled) {
		targets = append(targets, fmt.Sprintf("S3 (%s)", aws.ToString(bl.S3.Bucket)))
	}
	if bl.Firehose != nil && aws.ToBool(bl.Firehose.Enabled) {
		targets = append(targets, fmt.Sprintf("Firehose (%s)", aws.ToString(bl.Firehose.DeliveryStream)))
	}
	if len(targets) == 0 {
		return "Disabled", ""
	}
	return strings.Join(targets, ", "), logGroup
}
