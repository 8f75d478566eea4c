package models

import (
	"time"
)

// ClusterKind identifies which MSK deployment model a cluster uses.
type ClusterKind string

const (
	ClusterKindProvisioned ClusterKind = "Provisioned"
	ClusterKindServerless  ClusterKind = "Serverless"
)

// ClusterDescriptor holds the identity and configuration attributes of a
// single MSK cluster as discovered in one region. Pointer fields stay nil
// when the attribute does not exist for the cluster's kind (serverless
// clusters have no broker count or storage figures).
type ClusterDescriptor struct {
	AccountID          string
	Region             string
	ClusterName        string
	ClusterArn         string
	Kind               ClusterKind
	State              string
	CreationTime       *time.Time
	KafkaVersion       string
	BrokerNodes        *int32
	BrokerInstanceType string
	AvailabilityZones  *int32
	StoragePerBrokerGB *int32
	LogsDestination    string
	LogGroup           string
	Authentication     string
}

// IsProvisioned reports whether the cluster has broker nodes that can be
// addressed individually in CloudWatch.
func (c ClusterDescriptor) IsProvisioned() bool {
	return c.Kind == ClusterKindProvisioned
}

// ClusterFailure records a cluster that was listed but could not be
// described. The scan continues without it.
type ClusterFailure struct {
	Region     string
	ClusterArn string
	Err        error
}
