package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var _ ObjectStore = &S3Store{}

// S3API is the subset of the S3 client used by S3Store, declared as an
// interface so tests can substitute their own implementation.
type S3API interface {
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type S3Store struct {
	svc S3API
}

// NewS3Store builds an S3-backed store for bucket, discovering the bucket's
// region. Credentials come from the ambient environment; the region falls
// back to us-east-1 when none is configured.
func NewS3Store(ctx context.Context, bucket string) (*S3Store, error) {
	const defaultRegion = "us-east-1"
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(defaultRegion))
	if err != nil {
		return nil, err
	}
	svc := s3.NewFromConfig(cfg)
	region, err := manager.GetBucketRegion(ctx, svc, bucket)
	if err != nil {
		if s3IsNotFoundErr(err) {
			return nil, ErrDoesNotExist
		}
		return nil, err
	}
	if region != defaultRegion {
		cfg, err = config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return nil, err
		}
		svc = s3.NewFromConfig(cfg)
	}
	return &S3Store{svc: svc}, nil
}

// NewS3StoreWithClient builds a store around an existing client.
func NewS3StoreWithClient(svc S3API) *S3Store {
	return &S3Store{svc: svc}
}

func s3IsNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

func s3IsAccessDeniedErr(err error) bool {
	if err == nil {
		return false
	}
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "AccessDenied"
}

func (s *S3Store) Open(ctx context.Context, bucket string, key string, rng *ByteRange) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if rng != nil {
		input.Range = aws.String(rng.String())
	}
	slog.Debug("s3:GetObject", "bucket", bucket, "key", key, "range", aws.ToString(input.Range))
	out, err := s.svc.GetObject(ctx, input)
	switch {
	case s3IsNotFoundErr(err):
		return nil, ErrDoesNotExist
	case s3IsAccessDeniedErr(err):
		return nil, ErrAccessDenied
	case err != nil:
		return nil, err
	}
	return out.Body, nil
}

func (s *S3Store) SizeOf(ctx context.Context, bucket string, key string) (int64, error) {
	out, err := s.svc.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	slog.Debug("s3:HeadObject", "bucket", bucket, "key", key, "error", err)
	switch {
	case s3IsNotFoundErr(err):
		return 0, ErrDoesNotExist
	case s3IsAccessDeniedErr(err):
		return 0, ErrAccessDenied
	case err != nil:
		return 0, err
	}
	if out.ContentLength == nil {
		return 0, ErrSizeUnavailable
	}
	return aws.ToInt64(out.ContentLength), nil
}
