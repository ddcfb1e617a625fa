package billing

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	log "github.com/sirupsen/logrus"
)

// Source resolves the consolidated billing export for the current
// period from the billing bucket.
type Source struct {
	s3API  s3iface.S3API
	logger log.FieldLogger
}

// NewSource creates a Source backed by a live S3 client using ambient
// AWS credentials.
func NewSource(logger log.FieldLogger) *Source {
	sess := session.Must(session.NewSession())
	return &Source{s3API: s3.New(sess), logger: logger}
}

// NewSourceWithClient creates a Source with an explicit S3 client.
func NewSourceWithClient(client s3iface.S3API, logger log.FieldLogger) *Source {
	return &Source{s3API: client, logger: logger}
}

// ObjectKey returns the billing object name for the given consolidated
// billing account and date, e.g. "123456789012-aws-billing-csv-2026-08.csv".
func ObjectKey(accountID string, now time.Time) string {
	return fmt.Sprintf("%s-aws-billing-csv-%s.csv", accountID, now.Format("2006-01"))
}

// Fetch downloads the current month's billing CSV from the bucket and
// returns its contents along with the object key used.
func (s *Source) Fetch(bucket, accountID string) ([]byte, string, error) {
	key := ObjectKey(accountID, time.Now())
	s.logger.WithFields(log.Fields{"bucket": bucket, "key": key}).Info("fetching billing export")

	out, err := s.s3API.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, key, fmt.Errorf("fetching billing export %s from bucket %s: %w", key, bucket, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, key, fmt.Errorf("reading billing export %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil, key, fmt.Errorf("billing export %s in bucket %s is empty", key, bucket)
	}
	return data, key, nil
}

// ReadLocal reads a billing CSV from the local filesystem instead of
// S3.
func ReadLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading local billing export: %w", err)
	}
	return data, nil
}

// Save writes the raw billing export beside the working directory
// under its S3 object name.
func Save(filename string, data []byte) error {
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("saving billing export %s: %w", filename, err)
	}
	return nil
}
