package r2

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/vlatan/sitemap-builder/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// XMLContentType is the content type of every published document
const XMLContentType = "text/xml; charset=UTF-8"

type Service interface {
	// ObjectExists checks if the object exists in the bucket
	ObjectExists(ctx context.Context, timeout time.Duration, bucket, key string) error
	// PutObject puts object to bucket having the content
	PutObject(ctx context.Context, bucket, key string, body io.Reader, contentType string) error
	// UploadFile uploads a generated file from a directory to bucket
	UploadFile(ctx context.Context, bucket, rootPath, key, filePath string) error
	// Publish uploads every document, keyed by file name, under a prefix
	Publish(ctx context.Context, bucket, prefix string, docs map[string]string) error
}

// objectAPI is the part of the s3 client the service uses
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type service struct {
	client objectAPI
	// Waits for an uploaded object to be visible
	waitFor func(ctx context.Context, timeout time.Duration, bucket, key string) error
}

// New creates a new R2 client
func New(ctx context.Context, cfg *config.Config) (Service, error) {

	if cfg.R2AccountId == "" || cfg.R2AccessKeyId == "" || cfg.R2SecretAccessKey == "" {
		return nil, errors.New("R2 credentials are not configured")
	}

	// R2 is S3 compatible with an account endpoint and the "auto" region
	sdkConfig, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.R2AccessKeyId, cfg.R2SecretAccessKey, ""),
		),
		awsConfig.WithRegion("auto"),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS/R2 SDK configuration; %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		baseEndpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountId)
		o.BaseEndpoint = aws.String(baseEndpoint)
	})

	s := &service{client: client}
	s.waitFor = func(ctx context.Context, timeout time.Duration, bucket, key string) error {
		return s3.NewObjectExistsWaiter(client).Wait(
			ctx,
			&s3.HeadObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			},
			timeout,
		)
	}

	return s, nil
}

// ObjectExists checks if the object exists in the bucket
func (s *service) ObjectExists(ctx context.Context, timeout time.Duration, bucket, key string) error {
	if s.waitFor != nil {
		return s.waitFor(ctx, timeout, bucket, key)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

// PutObject puts object to bucket having the content
func (s *service) PutObject(
	ctx context.Context,
	bucket string,
	key string,
	body io.Reader,
	contentType string,
) error {

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=600, must-revalidate"),
	})

	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "EntityTooLarge" {
			return fmt.Errorf(
				"error while uploading object to %s; The object is too large: %w",
				bucket, err,
			)
		}

		return fmt.Errorf(
			"couldn't upload object %s:%s: %w",
			bucket, key, err,
		)
	}

	if err = s.ObjectExists(ctx, time.Minute, bucket, key); err != nil {
		return fmt.Errorf(
			"failed attempt to wait for object %s:%s to exist: %w",
			bucket, key, err,
		)
	}

	return nil
}

// UploadFile uploads a generated file from a directory to bucket
func (s *service) UploadFile(ctx context.Context, bucket, rootPath, key, filePath string) error {

	file, err := SecureOpen(rootPath, filePath)
	if err != nil {
		return fmt.Errorf("couldn't open the file %s: %w", filePath, err)
	}
	defer file.Close()

	return s.PutObject(ctx, bucket, key, file, contentTypeOf(filePath))
}

// Publish uploads every document, keyed by file name, under a prefix.
// Documents are uploaded in file name order and the first failure stops the upload.
func (s *service) Publish(ctx context.Context, bucket, prefix string, docs map[string]string) error {

	if bucket == "" {
		return errors.New("no bucket to publish to")
	}

	for _, name := range slices.Sorted(maps.Keys(docs)) {
		key := path.Join(prefix, name)
		if err := s.PutObject(ctx, bucket, key, strings.NewReader(docs[name]), contentTypeOf(name)); err != nil {
			return err
		}
		log.Printf("Published '%s' to %s", key, bucket)
	}

	return nil
}

// contentTypeOf returns the content type of a generated file
func contentTypeOf(name string) string {
	switch path.Ext(name) {
	case ".xml", ".xsl":
		return XMLContentType
	}
	return "application/octet-stream"
}
