package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	appconfig "storefront-chat/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Provider is one S3-compatible entry of the upload chain. Link
// resolution has its own fallback order: presigned GET, then the
// configured public base, then the raw bucket URL as last resort.
type S3Provider struct {
	cfg     appconfig.S3ProviderConfig
	s3      *s3.Client
	presign *s3.PresignClient
}

func NewS3Provider(ctx context.Context, cfg appconfig.S3ProviderConfig) (*S3Provider, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if parsed, err := url.Parse(endpoint); err == nil {
			endpoint = parsed.String()
		}
		opts = append(opts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == s3.ServiceID {
					return aws.Endpoint{URL: endpoint, SigningRegion: cfg.Region}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &S3Provider{
		cfg:     cfg,
		s3:      s3Client,
		presign: s3.NewPresignClient(s3Client),
	}, nil
}

func (p *S3Provider) Name() string {
	return p.cfg.Name
}

func (p *S3Provider) Upload(ctx context.Context, key, contentType string, body []byte) error {
	if key == "" {
		return errors.New("object key is required")
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}
	if len(body) > 0 {
		input.ContentLength = aws.Int64(int64(len(body)))
	}
	_, err := p.s3.PutObject(ctx, input)
	return err
}

// CreateLink resolves a dereferenceable URL for an uploaded object,
// falling through presigned GET, then public base, then raw bucket URL.
func (p *S3Provider) CreateLink(ctx context.Context, key string) (string, error) {
	presigned, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		if p.cfg.PresignTTL > 0 {
			po.Expires = p.cfg.PresignTTL
		} else {
			po.Expires = 24 * time.Hour
		}
	})
	if err == nil && presigned.URL != "" {
		return presigned.URL, nil
	}

	if p.cfg.PublicBase != "" {
		return p.cfg.PublicBase + "/" + key, nil
	}

	if p.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", p.cfg.Endpoint, p.cfg.Bucket, key), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.cfg.Bucket, p.cfg.Region, key), nil
}
