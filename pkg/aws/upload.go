package aws

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the S3 surface the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ReportUploader copies a finished report file into an S3 bucket.
type ReportUploader struct {
	Client PutObjectAPI
}

// NewReportUploader creates an uploader from a regional config
func NewReportUploader(cfg aws.Config) *ReportUploader {
	return &ReportUploader{Client: s3.NewFromConfig(cfg)}
}

// Upload stores the report under prefix, keeping the local file name, and
// returns the s3:// URI of the object.
func (u *ReportUploader) Upload(ctx context.Context, bucket, prefix, file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", fmt.Errorf("opening report for upload: %w", err)
	}
	defer f.Close()

	key := path.Join(prefix, filepath.Base(file))
	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading report to s3://%s/%s: %w", bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}
