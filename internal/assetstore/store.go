// Package assetstore wraps the S3-compatible object storage (Cloudflare R2)
// that holds uploaded documents, images and videos.
package assetstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dammi/pkg/config"
)

type Object struct {
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

type Usage struct {
	Used     int64 `json:"used"`
	Quota    int64 `json:"quota"`
	NumFiles int   `json:"numFiles"`
}

type Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
	quota     int64
}

// New builds a Store from config. Returns nil when R2 is not configured so
// the admin API can degrade to 503 on asset routes.
func New(cfg config.Config) *Store {
	if cfg.R2Endpoint == "" || cfg.R2AccessKey == "" || cfg.R2Bucket == "" {
		return nil
	}
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(cfg.R2Endpoint),
		Region:       "auto",
		Credentials:  awscreds.NewStaticCredentialsProvider(cfg.R2AccessKey, cfg.R2SecretKey, ""),
		UsePathStyle: true,
	})
	return &Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2Bucket,
		publicURL: strings.TrimRight(cfg.R2PublicURL, "/"),
		quota:     cfg.R2QuotaBytes,
	}
}

// List returns every stored object plus aggregate usage against the quota.
func (s *Store) List(ctx context.Context) ([]Object, Usage, error) {
	var objects []Object
	var used int64
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, Usage{}, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			size := aws.ToInt64(obj.Size)
			used += size
			objects = append(objects, Object{
				Key:          aws.ToString(obj.Key),
				URL:          s.PublicURL(aws.ToString(obj.Key)),
				Size:         size,
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return objects, Usage{Used: used, Quota: s.quota, NumFiles: len(objects)}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Rename copies oldKey to newKey and deletes the original. Not atomic; a
// failed delete leaves both objects, which the dashboard surfaces as a
// duplicate rather than data loss.
func (s *Store) Rename(ctx context.Context, oldKey, newKey string) error {
	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + oldKey),
		Key:        aws.String(newKey),
	})
	if err != nil {
		return fmt.Errorf("copy %q -> %q: %w", oldKey, newKey, err)
	}
	return s.Delete(ctx, oldKey)
}

// PresignPut returns a short-lived URL the browser can PUT the file to
// directly, plus the public URL it will be served from.
func (s *Store) PresignPut(ctx context.Context, key, contentType string) (uploadURL, publicURL string, err error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(time.Minute))
	if err != nil {
		return "", "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return req.URL, s.PublicURL(key), nil
}

func (s *Store) PublicURL(key string) string {
	if s.publicURL == "" {
		return key
	}
	return s.publicURL + "/" + key
}
