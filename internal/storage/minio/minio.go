package minio

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"panorama-ingest/internal/config"
	"panorama-ingest/internal/domain"
	"panorama-ingest/internal/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/zlog"
)

// PanoramaSink writes rendered assets to a MinIO/S3 bucket with public
// read access and returns canonical public URLs.
type PanoramaSink struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  *zlog.Zerolog
}

func NewPanoramaSink(cfg *config.Config, logger *zlog.Zerolog) (*PanoramaSink, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Minio.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, cfg.Minio.Bucket)
	if err := client.SetBucketPolicy(ctx, cfg.Minio.Bucket, policy); err != nil {
		return nil, fmt.Errorf("failed to set bucket policy: %w", err)
	}

	baseURL := strings.TrimRight(cfg.Minio.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}

	return &PanoramaSink{
		client:  client,
		bucket:  cfg.Minio.Bucket,
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

// Store writes one object per asset. A single attempt per object: on the
// first rejected write the whole ingest fails and the caller may
// re-submit under a fresh panorama ID.
func (s *PanoramaSink) Store(ctx context.Context, panoramaID string, assets []domain.RenderedAsset) (map[string]string, error) {
	urls := make(map[string]string, len(assets))

	for _, asset := range assets {
		key := storage.ObjectKey(panoramaID, asset.Label)

		_, err := s.client.PutObject(
			ctx,
			s.bucket,
			key,
			bytes.NewReader(asset.Bytes),
			int64(asset.ByteSize),
			minio.PutObjectOptions{ContentType: domain.EncodedMimeType},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: put %s: %v", storage.ErrStorageUnavailable, key, err)
		}

		urls[asset.Label] = fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key)

		s.logger.Debug().
			Str("panorama_id", panoramaID).
			Str("key", key).
			Int("size", asset.ByteSize).
			Msg("Stored panorama asset")
	}

	return urls, nil
}
