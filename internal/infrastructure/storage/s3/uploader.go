package s3

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Test seams mirroring the package-level indirection used for AWS calls.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Config captures the settings for an S3-compatible media host.
type Config struct {
	Region        string
	Endpoint      string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// Uploader streams local files to S3-compatible object storage and returns
// durable public URLs. It replaces ambient provider globals with an injected
// handle built once at startup.
type Uploader struct {
	cfg    Config
	client *s3.Client
}

// NewUploader builds the S3 client for the configured endpoint.
func NewUploader(ctx context.Context, cfg Config) (*Uploader, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Uploader{cfg: cfg, client: client}, nil
}

// Upload sends the file at localPath to the bucket and returns its public
// URL. The local file is left in place; removal belongs to the caller so the
// temp-file lifecycle has exactly one owner.
func (u *Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	if localPath == "" {
		return "", fmt.Errorf("upload: empty file path")
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("upload: open %s: %w", localPath, err)
	}
	defer f.Close()

	key := storageKey(filepath.Ext(localPath))
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = putObject(u.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload: put object: %w", err)
	}

	return u.publicURL(key), nil
}

// storageKey produces a collision-free dated key, e.g.
// media/2026/08/30/6f1c...-a2.png.
func storageKey(ext string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("media/%04d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

func (u *Uploader) publicURL(key string) string {
	base := strings.TrimSuffix(u.cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimSuffix(u.cfg.Endpoint, "/") + "/" + u.cfg.Bucket
	}
	return base + "/" + key
}
