package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/models"
)

const (
	markerObject  = ".cache"
	entriesFolder = "e/"
)

// S3API is the part of *s3.Client used by S3Storage.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Options configures the connection to an S3-compatible object store.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// NewS3Client builds an S3 client with static credentials and path-style
// addressing, which MinIO and most self-hosted stores require.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.Endpoint != "" {
			so.BaseEndpoint = aws.String(o.Endpoint)
		}
		so.UsePathStyle = true
	}), nil
}

// S3Storage keeps every cache under "<prefix><name>/". A marker object marks
// an existing cache; entries are JSON objects keyed by the SHA-256 of the URL.
type S3Storage struct {
	client S3API
	bucket string
	prefix string
	now    func() time.Time
}

func NewS3Storage(client S3API, bucket, prefix string) *S3Storage {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3Storage{client: client, bucket: bucket, prefix: prefix, now: time.Now}
}

func (s *S3Storage) root(name string) string {
	return s.prefix + name + "/"
}

func (s *S3Storage) Open(ctx context.Context, name string) (Cache, error) {
	ok, err := s.Has(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.root(name) + markerObject),
			Body:   strings.NewReader(s.now().UTC().Format(time.RFC3339Nano)),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create cache %s: %w", name, err)
		}
	}
	return &s3Cache{storage: s, name: name}, nil
}

func (s *S3Storage) Has(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.root(name) + markerObject),
	})
	if isMissing(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check cache %s: %w", name, err)
	}
	return true, nil
}

// Delete removes the marker and every entry of the cache.
func (s *S3Storage) Delete(ctx context.Context, name string) (bool, error) {
	keys, err := s.listKeys(ctx, s.root(name))
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(k),
		})
		if err != nil {
			return false, fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	return len(keys) > 0, nil
}

// Names lists caches in key order.
func (s *S3Storage) Names(ctx context.Context) ([]string, error) {
	var names []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(s.prefix),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list caches: %w", err)
		}
		for _, cp := range page.CommonPrefixes {
			n := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), s.prefix), "/")
			if n != "" {
				names = append(names, n)
			}
		}
	}
	return names, nil
}

func (s *S3Storage) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, o := range page.Contents {
			keys = append(keys, aws.ToString(o.Key))
		}
	}
	return keys, nil
}

type s3Cache struct {
	storage *S3Storage
	name    string
}

func (c *s3Cache) key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return c.storage.root(c.name) + entriesFolder + hex.EncodeToString(sum[:])
}

func (c *s3Cache) Match(ctx context.Context, url string) (*models.CachedResponse, error) {
	e, err := c.get(ctx, c.key(url))
	if err != nil {
		return nil, err
	}
	if e.URL != url {
		return nil, common.ErrorNotFound
	}
	return e, nil
}

func (c *s3Cache) get(ctx context.Context, key string) (*models.CachedResponse, error) {
	out, err := c.storage.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.storage.bucket),
		Key:    aws.String(key),
	})
	if isMissing(err) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	var e models.CachedResponse
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("bad cache object %s: %w", key, err)
	}
	return &e, nil
}

func (c *s3Cache) Put(ctx context.Context, entry *models.CachedResponse) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = c.storage.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.storage.bucket),
		Key:         aws.String(c.key(entry.URL)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s in %s: %w", entry.URL, c.name, err)
	}
	return nil
}

func (c *s3Cache) Delete(ctx context.Context, url string) error {
	_, err := c.storage.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.storage.bucket),
		Key:    aws.String(c.key(url)),
	})
	if err != nil && !isMissing(err) {
		return fmt.Errorf("failed to delete %s from %s: %w", url, c.name, err)
	}
	return nil
}

func (c *s3Cache) Keys(ctx context.Context) ([]string, error) {
	objects, err := c.storage.listKeys(ctx, c.storage.root(c.name)+entriesFolder)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(objects))
	for _, k := range objects {
		e, err := c.get(ctx, k)
		if errors.Is(err, common.ErrorNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		urls = append(urls, e.URL)
	}
	return urls, nil
}

func isMissing(err error) bool {
	if err == nil {
		return false
	}
	var (
		nf  *types.NotFound
		nsk *types.NoSuchKey
	)
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
