package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atinyakov/profilepanel/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectPutter is the subset of the S3 API used by S3Uploader.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3-compatible client (AWS S3, Cloudflare R2, MinIO).
type S3Options struct {
	// Endpoint overrides the service endpoint, e.g. https://<account>.r2.cloudflarestorage.com.
	Endpoint string
	// Region is the signing region; R2 uses "auto".
	Region string
	// AccessKeyID and AccessKeySecret are static credentials.
	AccessKeyID     string
	AccessKeySecret string
	// UsePathStyle addresses buckets as path segments instead of subdomains.
	UsePathStyle bool
	// HTTPClient replaces the SDK's default HTTP client when set.
	HTTPClient *http.Client
}

// NewS3Client builds an S3 client from static credentials.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	region := opts.Region
	if region == "" {
		region = "auto"
	}
	loadOpts := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.AccessKeySecret, "")),
		config.WithRegion(region),
	}
	if opts.HTTPClient != nil {
		loadOpts = append(loadOpts, config.WithHTTPClient(opts.HTTPClient))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	}), nil
}

// S3Uploader stores avatar images as objects in a bucket and serves them
// through a public URL template.
type S3Uploader struct {
	client    ObjectPutter
	bucket    string
	publicURL string
	log       *zap.Logger
}

// NewS3Uploader creates an uploader. publicURL is a fmt template with a single
// %s verb receiving the object key, e.g. "https://pub-xyz.r2.dev/%s".
func NewS3Uploader(client ObjectPutter, bucket, publicURL string, log *zap.Logger) *S3Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Uploader{client: client, bucket: bucket, publicURL: publicURL, log: log}
}

// Upload puts the image under avatars/<uuid>_<name> and returns its public
// URL. An accepted put that reports no ETag yields ("", nil).
func (u *S3Uploader) Upload(ctx context.Context, file models.ImageFile, progress ProgressFunc) (string, error) {
	key := fmt.Sprintf("avatars/%s_%s", uuid.NewString(), fileName(file))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	total := int64(len(file.Data))
	obj, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          newProgressReader(bytes.NewReader(file.Data), total, progress),
		ContentLength: aws.Int64(total),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	if obj == nil || obj.ETag == nil {
		u.log.Warn("object stored without etag", zap.String("key", key))
		return "", nil
	}

	u.log.Debug("image uploaded", zap.String("key", key), zap.String("etag", *obj.ETag))
	return CleanURL(fmt.Sprintf(u.publicURL, key)), nil
}

// CleanURL escapes spaces and normalises the URL; unparsable input is
// returned unchanged.
func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	return parsedURL.String()
}
