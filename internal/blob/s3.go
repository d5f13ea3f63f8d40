package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds the bucket connection settings.
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	TTL       time.Duration
}

// S3Presigner presigns object URLs against an S3-compatible endpoint
// such as MinIO.
type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

// NewS3Presigner builds a presigner with static credentials. Path-style
// addressing is used so custom endpoints work without bucket DNS.
func NewS3Presigner(ctx context.Context, cfg S3Config) (*S3Presigner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: cfg.Bucket,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// PresignPut allocates a key and returns a presigned PUT URL for it.
func (p *S3Presigner) PresignPut(ctx context.Context, kind Kind, ownerID string) (URL, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return URL{}, err
	}
	now := p.now()
	key := NewKey(kind, ownerID, now)

	req, err := p.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return URL{}, fmt.Errorf("presign put %s: %w", key, err)
	}
	return URL{Key: key, URL: req.URL, ExpiresAt: now.Add(p.ttl)}, nil
}

// PresignGet returns a presigned GET URL for key.
func (p *S3Presigner) PresignGet(ctx context.Context, key string) (URL, error) {
	now := p.now()
	req, err := p.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return URL{}, fmt.Errorf("presign get %s: %w", key, err)
	}
	return URL{Key: key, URL: req.URL, ExpiresAt: now.Add(p.ttl)}, nil
}
