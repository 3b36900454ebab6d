package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Store keeps documents in a Cloudflare R2 bucket through the S3 API.
type R2Store struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

func NewR2Store(ctx context.Context, accountID, accessKey, secretKey, bucket, publicBase string) (*R2Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID))
		o.UsePathStyle = true
		o.Region = "auto"
	})

	if publicBase == "" {
		publicBase = fmt.Sprintf("r2://%s", bucket)
	}

	return &R2Store{client: client, bucket: bucket, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (s *R2Store) Save(ctx context.Context, d Document) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	key := objectKey(d, time.Now())

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   d.Body,
	}
	if d.ContentType != "" {
		input.ContentType = aws.String(d.ContentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("could not upload file to R2: %v", err)
	}

	return s.publicBase + "/" + key, nil
}

func (s *R2Store) Delete(ctx context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.publicBase+"/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("could not delete file from R2: %v", err)
	}
	return nil
}
