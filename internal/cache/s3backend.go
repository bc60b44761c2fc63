package cache

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3BackendConfig mirrors the teacher's blobstorage.Config shape
// (endpoint/bucket/credentials, an Enabled switch guarding fallback to
// the local SQLite tier in cmd/server/main.go).
type S3BackendConfig struct {
	Enabled  bool
	Endpoint string
	Bucket   string
	Region   string
	Prefix   string
}

// S3Backend is an optional remote persistent-tier backend. It never
// expires entries server-side (S3 doesn't give us a cheap query over a
// TTL column) so expiry and the byte budget are tracked in a small
// local index table and enforced client-side, same contract as
// PersistentTier.
type S3Backend struct {
	cfg    S3BackendConfig
	client *s3.Client
	index  *PersistentTier // metadata only: key, size, expires, created; value left empty
}

// NewS3Backend builds an S3-backed persistent tier. The metadata index
// still lives in SQLite at indexPath because S3 has no cheap way to
// list-and-sum byte totals or scan for expiry.
func NewS3Backend(ctx context.Context, cfg S3BackendConfig, indexPath string, tierCfg PersistentTierConfig) (*S3Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	index, err := OpenPersistentTier(indexPath, tierCfg)
	if err != nil {
		return nil, err
	}

	return &S3Backend{cfg: cfg, client: client, index: index}, nil
}

func (b *S3Backend) objectKey(key string) string {
	return strings.TrimSuffix(b.cfg.Prefix, "/") + "/" + key
}

func (b *S3Backend) Get(key string) ([]byte, bool) {
	if _, ok := b.index.Get(key); !ok {
		return nil, false
	}
	out, err := b.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return nil, false
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (b *S3Backend) Set(key string, value []byte, ttl time.Duration) {
	_, err := b.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.objectKey(key)),
		Body:   bytes.NewReader(value),
	})
	if err != nil {
		return
	}
	b.index.Set(key, nil, ttl)
}

func (b *S3Backend) Delete(key string) {
	_, _ = b.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(b.objectKey(key)),
	})
	b.index.Delete(key)
}

func (b *S3Backend) DeletePattern(likePattern string) {
	re := likePattern2Regex(likePattern)
	keys := b.index.matchingKeys(re)
	for _, k := range keys {
		b.Delete(k)
	}
}

func (b *S3Backend) Prune() {
	b.index.Prune()
}

func (b *S3Backend) Stats() PersistentStats {
	return b.index.Stats()
}

func likePattern2Regex(pattern string) interface {
	MatchString(string) bool
} {
	return likePattern(pattern)
}

// matchingKeys returns every key in the index matching re, used by the
// S3 backend to translate a LIKE pattern into concrete object keys to
// delete remotely.
func (p *PersistentTier) matchingKeys(re interface{ MatchString(string) bool }) []string {
	rows, err := p.db.Query(`SELECT key FROM blobs`)
	if err != nil {
		return nil
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if rows.Scan(&k) == nil && re.MatchString(k) {
			keys = append(keys, k)
		}
	}
	return keys
}
