package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/explorepe/explorepe-api/pkg/logger"
	"github.com/explorepe/explorepe-api/pkg/metrics"
	"github.com/explorepe/explorepe-api/pkg/retry"
	"go.uber.org/zap"
)

const (
	// MaxImageSize is the largest accepted upload in bytes (5MB)
	MaxImageSize = 5 * 1024 * 1024

	defaultRegion = "us-east-1"
	keyPrefix     = "profiles/"
)

var allowedContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Config describes an S3-compatible bucket
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Endpoint        string
	Region          string
	// PublicBaseURL is the prefix of served object URLs. Defaults to {Endpoint}/{BucketName}.
	PublicBaseURL string
}

// StorageClient uploads profile images to S3-compatible object storage
type StorageClient struct {
	s3Client      *s3.Client
	bucketName    string
	publicBaseURL string
}

// NewStorageClient creates a new object storage client using the S3 SDK
func NewStorageClient(cfg Config) (*StorageClient, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	opts := s3.Options{
		Region: region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		if cfg.Endpoint != "" {
			publicBaseURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.BucketName)
		} else {
			publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.BucketName, region)
		}
	}

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", region),
	)

	return &StorageClient{
		s3Client:      s3.New(opts),
		bucketName:    cfg.BucketName,
		publicBaseURL: publicBaseURL,
	}, nil
}

// UploadImage stores data under key and returns its public URL
func (s *StorageClient) UploadImage(ctx context.Context, data []byte, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadImage"

	err := retry.Do(ctx, retry.StorageConfig(), "storage."+operation, func() error {
		_, putErr := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(s.bucketName),
			Key:          aws.String(key),
			Body:         bytes.NewReader(data),
			ContentType:  aws.String(contentType),
			CacheControl: aws.String("public, max-age=31536000, immutable"),
		})
		return putErr
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return s.publicBaseURL + "/" + key, nil
}

// DeleteImage removes the object behind imageURL.
// URLs that do not point into this bucket are ignored.
func (s *StorageClient) DeleteImage(ctx context.Context, imageURL string) error {
	key, ok := s.KeyFromURL(imageURL)
	if !ok {
		return nil
	}

	start := time.Now()
	operation := "deleteImage"

	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall(ctx, "object_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return fmt.Errorf("failed to delete image: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall(ctx, "object_storage", operation, "success", duration, zap.String("key", key))
	return nil
}

// KeyFromURL returns the object key of a URL produced by UploadImage
func (s *StorageClient) KeyFromURL(imageURL string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(imageURL, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(imageURL, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}

// ValidateImageType validates the image content type
func (s *StorageClient) ValidateImageType(contentType string) error {
	if _, ok := allowedContentTypes[strings.ToLower(contentType)]; !ok {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpeg, jpg, png, webp", contentType)
	}
	return nil
}

// ValidateImageSize validates the image size (max 5MB)
func (s *StorageClient) ValidateImageSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("empty file")
	}
	if size > MaxImageSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", size, MaxImageSize)
	}
	return nil
}

// GenerateKey builds a unique object key: profiles/{profileID}-{unixMillis}-{random}{ext}
func (s *StorageClient) GenerateKey(profileID, fileName, contentType string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = allowedContentTypes[strings.ToLower(contentType)]
	}

	return fmt.Sprintf("%s%s-%d-%s%s", keyPrefix, profileID, time.Now().UnixMilli(), randomSuffix(), ext)
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "0"
	}
	return hex.EncodeToString(buf)
}

func recordMetrics(operation, status string, duration float64) {
	metrics.StorageRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, status).Inc()
}
