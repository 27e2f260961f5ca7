// Package s3manager owns one authenticated S3 session built from credentials
// supplied at construction and exposes bucket lifecycle operations: create,
// list, and delete-with-empty.
package s3manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/guided-traffic/s3-bucket-manager/internal/monitoring"
)

// defaultRegion is the one region where S3 rejects an explicit location
// constraint on bucket creation.
const defaultRegion = "us-east-1"

// Config holds the credentials and region used to build the S3 session.
// SessionToken is set only for temporary STS credentials.
type Config struct {
	Region       string
	AccessKeyID  string
	SecretKey    string
	SessionToken string
}

// BucketDescriptor describes one bucket in a listing. CreationDate is an
// RFC 3339 timestamp, absent when the provider did not report one.
type BucketDescriptor struct {
	Name         string  `json:"name"`
	CreationDate *string `json:"creation_date,omitempty"`
}

// Manager wraps an S3 client for bucket lifecycle operations. It holds no
// mutable state after construction and is safe for concurrent use.
type Manager struct {
	client S3API
	region string
	logger *logrus.Entry
}

// NewManager builds the S3 session once from static credentials. There is no
// further credential handling: no caching, no rotation.
func NewManager(ctx context.Context, cfg *Config) (*Manager, error) {
	logger := logrus.WithField("component", "s3-manager")

	if cfg.SessionToken != "" {
		logger.Info("Initializing S3 client with temporary STS credentials")
	} else {
		logger.Info("Initializing S3 client with static AWS credentials")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			cfg.SessionToken,
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Manager{
		client: s3.NewFromConfig(awsCfg),
		region: cfg.Region,
		logger: logger,
	}, nil
}

// NewManagerWithClient builds a manager around an existing S3 client.
// Used by tests to substitute a mock.
func NewManagerWithClient(client S3API, region string) *Manager {
	return &Manager{
		client: client,
		region: region,
		logger: logrus.WithField("component", "s3-manager"),
	}
}

// CreateBucket creates a bucket in the configured region and reports success
// as a bool. A bucket that already exists and is owned by the caller counts
// as success, so repeated create calls are non-destructive. All failure
// causes are logged; callers must check the result.
func (m *Manager) CreateBucket(ctx context.Context, bucketName string) bool {
	logger := m.logger.WithFields(logrus.Fields{
		"bucket": bucketName,
		"region": m.region,
	})
	logger.Info("Attempting to create S3 bucket")

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucketName),
	}
	// us-east-1 must not receive an explicit location constraint; every other
	// region must. This is an S3 API requirement, not a stylistic choice.
	if m.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(m.region),
		}
	}

	start := time.Now()
	_, err := m.client.CreateBucket(ctx, input)
	if err == nil {
		monitoring.RecordS3Operation("CreateBucket", bucketName, "success", time.Since(start))
		logger.Info("S3 bucket created successfully")
		return true
	}
	monitoring.RecordS3Operation("CreateBucket", bucketName, "error", time.Since(start))

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		logger = logger.WithFields(logrus.Fields{
			"error_code":    apiErr.ErrorCode(),
			"error_message": apiErr.ErrorMessage(),
		})
		switch apiErr.ErrorCode() {
		case "BucketAlreadyOwnedByYou":
			logger.Warn("Bucket already exists and is owned by you; treating as success")
			return true
		case "BucketAlreadyExists":
			logger.Error("Bucket already exists and is owned by another account; cannot create")
			return false
		case "AccessDenied":
			logger.Error("Access denied: the provided AWS credentials cannot create buckets in this region")
			return false
		case "InvalidAccessKeyId", "SignatureDoesNotMatch":
			logger.Error("Invalid AWS credentials; check the credentials retrieved from Vault")
			return false
		default:
			logger.Error("Failed to create S3 bucket")
			return false
		}
	}

	logger.WithError(err).Error("Unexpected error while creating S3 bucket")
	return false
}

// ListBuckets returns all buckets in the account as a single unpaginated
// call. Accounts with enough buckets to require pagination are a known,
// documented limitation.
func (m *Manager) ListBuckets(ctx context.Context) ([]BucketDescriptor, error) {
	m.logger.Info("Attempting to list S3 buckets")

	start := time.Now()
	output, err := m.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		monitoring.RecordS3Operation("ListBuckets", "", "error", time.Since(start))
		m.logger.WithError(err).Error("Failed to list S3 buckets")
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	monitoring.RecordS3Operation("ListBuckets", "", "success", time.Since(start))

	buckets := make([]BucketDescriptor, 0, len(output.Buckets))
	for _, bucket := range output.Buckets {
		descriptor := BucketDescriptor{
			Name: aws.ToString(bucket.Name),
		}
		if bucket.CreationDate != nil {
			created := bucket.CreationDate.UTC().Format(time.RFC3339)
			descriptor.CreationDate = &created
		}
		buckets = append(buckets, descriptor)
	}

	m.logger.WithField("count", len(buckets)).Info("Successfully listed S3 buckets")
	return buckets, nil
}

// EmptyBucket deletes all live objects, historical versions, and delete
// markers from a bucket. The bucket must be empty of all three before S3
// accepts a deletion. Each batch delete is a single call over the listed set;
// the listings are not paginated. Provider errors propagate unmodified.
func (m *Manager) EmptyBucket(ctx context.Context, bucketName string) error {
	logger := m.logger.WithField("bucket", bucketName)
	logger.Info("Attempting to empty S3 bucket")

	// Phase a: live objects.
	objects, err := m.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		logger.WithError(err).Error("Failed to list objects while emptying bucket")
		return err
	}
	if len(objects.Contents) > 0 {
		identifiers := make([]types.ObjectIdentifier, 0, len(objects.Contents))
		for _, object := range objects.Contents {
			identifiers = append(identifiers, types.ObjectIdentifier{Key: object.Key})
		}
		if err := m.deleteBatch(ctx, bucketName, identifiers); err != nil {
			logger.WithError(err).Error("Failed to delete objects while emptying bucket")
			return err
		}
		logger.WithField("count", len(identifiers)).Info("Deleted objects from bucket")
	}

	// Phase b: versions and delete markers, which keep a versioned bucket
	// non-empty even after its live objects are gone.
	versions, err := m.client.ListObjectVersions(ctx, &s3.ListObjectVersionsInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		logger.WithError(err).Error("Failed to list object versions while emptying bucket")
		return err
	}
	if len(versions.Versions) > 0 {
		identifiers := make([]types.ObjectIdentifier, 0, len(versions.Versions))
		for _, version := range versions.Versions {
			identifiers = append(identifiers, types.ObjectIdentifier{
				Key:       version.Key,
				VersionId: version.VersionId,
			})
		}
		if err := m.deleteBatch(ctx, bucketName, identifiers); err != nil {
			logger.WithError(err).Error("Failed to delete object versions while emptying bucket")
			return err
		}
		logger.WithField("count", len(identifiers)).Info("Deleted object versions from bucket")
	}
	if len(versions.DeleteMarkers) > 0 {
		identifiers := make([]types.ObjectIdentifier, 0, len(versions.DeleteMarkers))
		for _, marker := range versions.DeleteMarkers {
			identifiers = append(identifiers, types.ObjectIdentifier{
				Key:       marker.Key,
				VersionId: marker.VersionId,
			})
		}
		if err := m.deleteBatch(ctx, bucketName, identifiers); err != nil {
			logger.WithError(err).Error("Failed to delete delete markers while emptying bucket")
			return err
		}
		logger.WithField("count", len(identifiers)).Info("Deleted delete markers from bucket")
	}

	logger.Info("S3 bucket successfully emptied")
	return nil
}

// deleteBatch issues one DeleteObjects call for the given identifiers. No
// chunking: staying under the provider's per-call limit is the listing's
// concern, matching the unpaginated list calls above.
func (m *Manager) deleteBatch(ctx context.Context, bucketName string, identifiers []types.ObjectIdentifier) error {
	start := time.Now()
	_, err := m.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucketName),
		Delete: &types.Delete{
			Objects: identifiers,
		},
	})
	status := "success"
	if err != nil {
		status = "error"
	}
	monitoring.RecordS3Operation("DeleteObjects", bucketName, status, time.Since(start))
	return err
}

// DeleteBucket empties a bucket and then deletes it. The deletion call is
// only issued after the empty phase completes without error. Failures come
// back as a *DeleteError carrying the classified kind and the provider's
// error code. A Conflict after a clean empty phase means residual content
// appeared; it is reported, not retried.
func (m *Manager) DeleteBucket(ctx context.Context, bucketName string) error {
	logger := m.logger.WithField("bucket", bucketName)
	logger.Info("Attempting to delete S3 bucket")

	if err := m.EmptyBucket(ctx, bucketName); err != nil {
		deleteErr := classifyDeleteError(bucketName, err)
		logger.WithError(err).WithField("kind", deleteErr.Kind).Error("Failed to empty bucket before deletion")
		return deleteErr
	}

	start := time.Now()
	_, err := m.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		monitoring.RecordS3Operation("DeleteBucket", bucketName, "error", time.Since(start))
		deleteErr := classifyDeleteError(bucketName, err)
		logger.WithError(err).WithFields(logrus.Fields{
			"kind":       deleteErr.Kind,
			"error_code": deleteErr.Code,
		}).Error("Failed to delete S3 bucket")
		return deleteErr
	}
	monitoring.RecordS3Operation("DeleteBucket", bucketName, "success", time.Since(start))

	logger.Info("S3 bucket successfully deleted")
	return nil
}
