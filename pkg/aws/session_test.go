package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSTS struct {
	identity func() (*sts.GetCallerIdentityOutput, error)
}

func (f *fakeSTS) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f.identity()
}

func TestNewSessionResolvesIdentity(t *testing.T) {
	api := &fakeSTS{identity: func() (*sts.GetCallerIdentityOutput, error) {
		return &sts.GetCallerIdentityOutput{
			Account: aws.String("123456789012"),
			Arn:     aws.String("arn:aws:iam::123456789012:role/report-runner"),
		}, nil
	}}

	sess, err := newSession(context.Background(), aws.Config{Region: "us-east-1"}, api)

	require.NoError(t, err)
	assert.Equal(t, "123456789012", sess.AccountID)
	assert.Equal(t, "arn:aws:iam::123456789012:role/report-runner", sess.Identity)
}

func TestNewSessionCredentialFailure(t *testing.T) {
	api := &fakeSTS{identity: func() (*sts.GetCallerIdentityOutput, error) {
		return nil, errors.New("ExpiredToken")
	}}

	_, err := newSession(context.Background(), aws.Config{}, api)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifying AWS credentials")
	assert.Contains(t, err.Error(), "ExpiredToken")
}

func TestRegionalPinsRegion(t *testing.T) {
	api := &fakeSTS{identity: func() (*sts.GetCallerIdentityOutput, error) {
		return &sts.GetCallerIdentityOutput{Account: aws.String("123456789012"), Arn: aws.String("arn:x")}, nil
	}}
	sess, err := newSession(context.Background(), aws.Config{Region: "us-east-1"}, api)
	require.NoError(t, err)

	regional := sess.Regional("ap-northeast-2")

	assert.Equal(t, "ap-northeast-2", regional.Region)
	// The session's own config keeps its region; Regional hands out copies.
	assert.Equal(t, "us-east-1", sess.Regional("us-east-1").Region)
	assert.Equal(t, "us-east-1", sess.Base().Region)
}
