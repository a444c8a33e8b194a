package images

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/oortcloud/item-catalog/internal/awsx"
)

// Links issues presigned download URLs for stored images and deletes
// image objects by key.
type Links struct {
	presign  awsx.S3PresignAPI
	s3Client awsx.S3API
	bucket   string
}

// NewLinks returns a Links bound to bucket.
func NewLinks(presign awsx.S3PresignAPI, s3Client awsx.S3API, bucket string) *Links {
	return &Links{
		presign:  presign,
		s3Client: s3Client,
		bucket:   bucket,
	}
}

// IssueDownloadURL returns a presigned GET URL for key, valid for expiry.
// Any client error degrades to the empty string: read responses carry a
// null URL instead of failing.
func (l *Links) IssueDownloadURL(ctx context.Context, key string, expiry time.Duration) string {
	if key == "" {
		return ""
	}

	req, err := l.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			log.Printf("images: presign %s: %s: %s", key, ae.ErrorCode(), ae.ErrorMessage())
		} else {
			log.Printf("images: presign %s: %v", key, err)
		}
		return ""
	}

	return req.URL
}

// DeleteObject removes the image object stored under key. Unlike
// IssueDownloadURL it propagates the client error to the caller.
func (l *Links) DeleteObject(ctx context.Context, key string) error {
	_, err := l.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
