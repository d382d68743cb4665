// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Snapshot bundle upload to S3-compatible object storage

package publish

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sony-level/scenepack/internal/config"
	apperrors "github.com/sony-level/scenepack/internal/errors"
	"github.com/sony-level/scenepack/internal/snapshot"
)

// S3Publisher uploads bundles with the minio client
type S3Publisher struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Publisher validates cfg and builds the client. No request is made.
func NewS3Publisher(cfg config.PublishConfig) (*S3Publisher, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, apperrors.NewConfig("publish endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, apperrors.NewConfig("publish access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, apperrors.NewConfig("publish bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Publisher{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     cfg.Prefix,
	}, nil
}

func (p *S3Publisher) ensureBucket(ctx context.Context) error {
	p.initOnce.Do(func() {
		exists, err := p.client.BucketExists(ctx, p.bucketName)
		if err != nil {
			p.initErr = err
			return
		}
		if exists {
			return
		}
		p.initErr = p.client.MakeBucket(ctx, p.bucketName, minio.MakeBucketOptions{Region: p.region})
	})
	return p.initErr
}

// Publish uploads the bundle under <prefix>/<name>.tar.zst.
// An existing object with that key is never replaced.
func (p *S3Publisher) Publish(ctx context.Context, name, bundlePath string) (string, error) {
	if p == nil || p.client == nil {
		return "", fmt.Errorf("publisher is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("snapshot name is required")
	}
	if err := p.ensureBucket(ctx); err != nil {
		return "", apperrors.NewArchive("ensure bucket", err)
	}

	key := ObjectKey(p.prefix, name)
	if _, err := p.client.StatObject(ctx, p.bucketName, key, minio.StatObjectOptions{}); err == nil {
		return "", apperrors.NewArchive(fmt.Sprintf("object %s already exists in %s", key, p.bucketName), nil)
	} else if code := minio.ToErrorResponse(err).Code; code != "NoSuchKey" {
		return "", apperrors.NewArchive("stat "+key, err)
	}

	f, err := os.Open(bundlePath)
	if err != nil {
		return "", apperrors.NewArchive("open bundle", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", apperrors.NewArchive("stat bundle", err)
	}

	_, err = p.client.PutObject(ctx, p.bucketName, key, f, info.Size(), minio.PutObjectOptions{
		ContentType:  "application/zstd",
		UserMetadata: map[string]string{"snapshot": name},
	})
	if err != nil {
		return "", apperrors.NewArchive("upload "+key, err)
	}
	return key, nil
}

// ObjectKey returns the key a snapshot bundle is stored under
func ObjectKey(prefix, name string) string {
	object := strings.TrimSpace(name) + snapshot.BundleExt
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return object
	}
	return path.Join(prefix, object)
}
