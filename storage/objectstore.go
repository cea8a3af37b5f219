// Package storage wraps an S3-compatible object store for archiving and
// restoring the price lake and the source cache's materialized partitions.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/mtgjson/mtgjson/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client wraps an s3.Client with the bucket it's scoped to, so callers don't
// thread the bucket name through every call.
type Client struct {
	s3     *s3.Client
	bucket string
}

// NewClient builds an object-store client against the endpoint configured in
// cfg. The custom endpoint resolver lets this target any S3-compatible
// store, not just AWS itself.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.ObjectStoreURL,
				SigningRegion:     cfg.ObjectStoreRegion,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.ObjectStoreRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.ObjectStoreKey, cfg.ObjectStoreSecret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}
	return &Client{s3: s3.NewFromConfig(awsCfg), bucket: cfg.ObjectStoreBucket}, nil
}

// Put uploads data under key, overwriting any existing object.
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Get downloads the object at key.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(out.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// List returns every object key under prefix, with its LastModified time.
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	var token *string
	for {
		resp, err := c.s3.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range resp.Contents {
			out = append(out, Object{Key: aws.ToString(obj.Key), LastModified: *obj.LastModified})
		}
		if !aws.ToBool(resp.IsTruncated) {
			break
		}
		token = resp.NextContinuationToken
	}
	return out, nil
}

// Delete removes the object at key.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	return err
}

// Object is a key plus its modification time, as returned by List.
type Object struct {
	Key          string
	LastModified time.Time
}

// LinkFor builds the public URL for key under this client's endpoint and
// bucket, matching the link format the original teacher's upload helper
// returned.
func (c *Client) LinkFor(cfg *config.Config, key string) string {
	return fmt.Sprintf("%s/%s/%s", cfg.ObjectStoreURL, c.bucket, key)
}
