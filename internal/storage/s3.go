package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/opencontainers/go-digest"
)

// Object store backed by AWS S3.
type S3 struct {
	client *s3.Client
}

// Creates an S3 store using the ambient AWS credential chain.
func NewS3(ctx context.Context) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return &S3{client: s3.NewFromConfig(cfg)}, nil
}

// Reports whether the object exists in the bucket.
func (s *S3) Exists(ctx context.Context, region, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, regionOverride(region))
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return false, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return false, fmt.Errorf("%w: head s3://%s/%s: %v", ErrStorage, bucket, key, err)
	}
	return true, nil
}

// Uploads the archive bytes under the given key.
//
// The sha256 checksum is attached to the request; S3 rejects the put
// when the received bytes do not match it.
func (s *S3) Put(ctx context.Context, region, bucket, key string, data []byte, checksum digest.Digest) error {
	sum, err := base64Checksum(checksum)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:         aws.String(bucket),
		Key:            aws.String(key),
		Body:           bytes.NewReader(data),
		ChecksumSHA256: aws.String(sum),
	}, regionOverride(region))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: put s3://%s/%s: %v", ErrStorage, bucket, key, err)
	}

	slog.Info("archive uploaded", "bucket", bucket, "key", key, "size", len(data))

	return nil
}

// Converts a hex sha256 digest to the base64 form S3 checksums use.
func base64Checksum(checksum digest.Digest) (string, error) {
	if checksum.Algorithm() != digest.SHA256 {
		return "", fmt.Errorf("unsupported checksum algorithm %q", checksum.Algorithm())
	}
	raw, err := hex.DecodeString(checksum.Encoded())
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Per-call region override; a zero region keeps the client default.
func regionOverride(region string) func(*s3.Options) {
	return func(o *s3.Options) {
		if region != "" {
			o.Region = region
		}
	}
}
