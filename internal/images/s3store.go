/*
Copyright (c) 2026 GeneClackman
SPDX-License-Identifier: MIT
*/

package images

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store implements ObjectStore against any S3-compatible endpoint
// (named, out-of-pack: no example imports an S3 SDK, but §6 names an
// explicit S3-compatible interface and aws-sdk-go-v2 is the standard
// ecosystem client for it). Path-style addressing is forced on so this
// also works against MinIO-style endpoints, not just AWS.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Store builds a client against a custom endpoint (MinIO, Ceph
// RGW, or AWS itself) using static credentials, since this engine's
// object store is named by env var rather than discovered from the
// ambient AWS config chain.
func NewS3Store(ctx context.Context, endpoint, accessKey, secret, bucket, publicURL string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secret, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: bucket, publicURL: publicURL}, nil
}

// Put uploads body under key and returns the public URL the rest of the
// engine stores on Media rows, per §4.6.
func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", s.publicURL, key), nil
}
