package isomorph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrAssetNotFound is returned by an AssetSource for unknown names.
var ErrAssetNotFound = errors.New("isomorph: asset not found")

// AssetSource provides static files by slash-separated relative name.
type AssetSource interface {
	Open(ctx context.Context, name string) (*Asset, error)
}

// Asset is an opened static file.
type Asset struct {
	Content     io.ReadSeeker
	ModTime     time.Time
	ContentType string // empty lets the server sniff it

	close func() error
}

// Close releases the asset.
func (a *Asset) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}

// DirAssets serves files from a local directory.
type DirAssets struct {
	fs http.FileSystem
}

// NewDirAssets creates a source rooted at dir.
func NewDirAssets(dir string) *DirAssets {
	return &DirAssets{fs: http.Dir(dir)}
}

// Open implements AssetSource.
func (d *DirAssets) Open(_ context.Context, name string) (*Asset, error) {
	f, err := d.fs.Open("/" + name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, ErrAssetNotFound
	}
	return &Asset{Content: f, ModTime: info.ModTime(), close: f.Close}, nil
}

// S3GetObjectAPI is the part of the S3 client S3Assets needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// DefaultS3MaxAssetSize bounds how much of an object S3Assets buffers.
const DefaultS3MaxAssetSize = 16 << 20

// S3Assets serves static files from an S3 bucket. Objects are buffered so
// range and conditional requests work the same as for local files.
type S3Assets struct {
	client  S3GetObjectAPI
	bucket  string
	prefix  string
	maxSize int64
}

// NewS3Assets creates a source reading bucket/prefix+name.
//
// Example usage:
//
//	client := isomorph.NewS3Client("eu-west-1", "")
//	assets := isomorph.NewS3Assets(client, "my-site", "public/")
func NewS3Assets(client S3GetObjectAPI, bucket, prefix string) *S3Assets {
	return &S3Assets{
		client:  client,
		bucket:  bucket,
		prefix:  prefix,
		maxSize: DefaultS3MaxAssetSize,
	}
}

// Open implements AssetSource.
func (s *S3Assets) Open(ctx context.Context, name string) (*Asset, error) {
	key := s.prefix + name
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrAssetNotFound
		}
		var status interface{ HTTPStatusCode() int }
		if errors.As(err, &status) && (status.HTTPStatusCode() == http.StatusNotFound || status.HTTPStatusCode() == http.StatusForbidden) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("isomorph: get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("isomorph: read s3://%s/%s: %w", s.bucket, key, err)
	}
	if int64(len(body)) > s.maxSize {
		return nil, fmt.Errorf("isomorph: s3://%s/%s exceeds %d bytes", s.bucket, key, s.maxSize)
	}

	return &Asset{
		Content:     bytes.NewReader(body),
		ModTime:     aws.ToTime(out.LastModified),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

// NewS3Client builds an S3 client from the standard AWS_* environment
// credentials, falling back to anonymous access for public buckets. A
// non-empty endpoint selects path-style addressing (MinIO, LocalStack).
func NewS3Client(region, endpoint string) *s3.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:      region,
		Credentials: envCredentials(),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials() aws.CredentialsProvider {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.AnonymousCredentials{}
	}
	token := os.Getenv("AWS_SESSION_TOKEN")
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    token,
			Source:          "Environment",
		}, nil
	}))
}
