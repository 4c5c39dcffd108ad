// Package assets persists generated achievement images and returns the
// absolute URLs they are served from. Keys always live under KeyPrefix.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// KeyPrefix is the path segment every generated image is stored under.
const KeyPrefix = "generated-nfts"

// Store writes an object and returns its public URL.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ImageKey returns "generated-nfts/<prefix>-<unixMillis>.png".
func ImageKey(prefix string, unixMillis int64) string {
	return fmt.Sprintf("%s/%s-%d.png", KeyPrefix, prefix, unixMillis)
}

func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))[1:]
	if k == "" || !strings.HasPrefix(k, KeyPrefix+"/") {
		return "", errors.New("asset key must live under " + KeyPrefix + "/")
	}
	return k, nil
}

// LocalStore writes into a directory served as static files.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore returns a store rooted at dir whose files are reachable at
// baseURL + "/" + key.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir is the directory served under /generated-nfts.
func (s *LocalStore) Dir() string { return filepath.Join(s.dir, KeyPrefix) }

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", err
	}
	return s.baseURL + "/" + k, nil
}

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes objects to a bucket.
type S3Store struct {
	client  S3API
	bucket  string
	baseURL string
}

// NewS3Store wraps client. With an empty baseURL, URLs use the bucket's
// virtual-hosted endpoint.
func NewS3Store(client S3API, bucket, baseURL string) *S3Store {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Store{client: client, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}
}

// NewS3Client builds a client from the default AWS credential chain plus
// optFns. Path-style addressing keeps it usable against LocalStack/MinIO.
func NewS3Client(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = true }), nil
}

// Put implements Store.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", k, err)
	}
	return s.baseURL + "/" + k, nil
}
