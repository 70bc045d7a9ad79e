package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the part of the S3 client the archive uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3 struct {
	Client ObjectAPI
	Bucket string
	Prefix string
}

type S3Config struct {
	Region string
	Bucket string
	Prefix string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	return &S3{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
	}, nil
}

func (s *S3) objectKey(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	// archive keys already start with the prefix; don't double it
	if p := strings.Trim(s.Prefix, "/"); p != "" && !strings.HasPrefix(k, p+"/") {
		k = p + "/" + k
	}
	return k, nil
}

func (s *S3) Put(ctx context.Context, r io.Reader, in PutInput) (PutResult, error) {
	key, err := s.objectKey(in.Key)
	if err != nil {
		return PutResult{}, err
	}

	put := &s3.PutObjectInput{
		Bucket:      &s.Bucket,
		Key:         &key,
		Body:        r,
		ContentType: &in.ContentType,
	}
	if in.Size > 0 {
		put.ContentLength = &in.Size
	}
	if _, err := s.Client.PutObject(ctx, put); err != nil {
		return PutResult{}, err
	}

	return PutResult{Key: key, Location: fmt.Sprintf("s3://%s/%s", s.Bucket, key)}, nil
}

func (s *S3) String() string { return fmt.Sprintf("s3(%s/%s)", s.Bucket, s.Prefix) }
