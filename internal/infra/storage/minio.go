package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectSink stores downloaded reports in an S3-compatible bucket instead of
// the local filesystem. Useful for headless runs that archive analyses.
// Implements download.Sink.
type ObjectSink struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewObjectSink(ctx context.Context, endpoint, region, bucket, prefix, accessKey, secretKey string, useSSL bool) (*ObjectSink, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &ObjectSink{client: cli, bucket: bucket, prefix: prefix}, nil
}

func (s *ObjectSink) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := path.Join(s.prefix, filename)

	// size -1: the body is a stream from the API, length unknown
	_, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
