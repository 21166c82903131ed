package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sandai/challonge/src/app/challonge"
)

var ErrInvalidRef = errors.New("asset: invalid object reference")

// ObjectGetter is the part of the S3 client used to download assets.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectStore reads assets referenced as scheme://bucket/key from an S3
// compatible store.
type ObjectStore struct {
	client ObjectGetter
	bucket string
}

// NewObjectStore wraps client. bucket is used for references without one,
// e.g. "r2:///replays/final.mp4".
func NewObjectStore(client ObjectGetter, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

// R2Config holds Cloudflare R2 credentials.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// NewR2 builds an ObjectStore for a Cloudflare R2 account.
func NewR2(ctx context.Context, cfg R2Config) (*ObjectStore, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.Bucket == "" {
		return nil, errors.New("invalid R2 configuration: all fields are required")
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return NewObjectStore(client, cfg.Bucket), nil
}

// Load downloads the object at ref.
func (s *ObjectStore) Load(ctx context.Context, ref string) (challonge.Asset, error) {
	bucket, key, err := s.locate(ref)
	if err != nil {
		return challonge.Asset{}, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return challonge.Asset{}, fmt.Errorf("get object %s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return challonge.Asset{}, fmt.Errorf("read object %s/%s: %w", bucket, key, err)
	}

	name := path.Base(key)
	ct := aws.ToString(out.ContentType)
	if ct == "" {
		ct = challonge.ContentType(name, content)
	}
	return challonge.Asset{Name: name, ContentType: ct, Content: content}, nil
}

func (s *ObjectStore) locate(ref string) (string, string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRef, ref)
	}
	bucket := u.Host
	if bucket == "" {
		bucket = s.bucket
	}
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidRef, ref)
	}
	return bucket, key, nil
}
