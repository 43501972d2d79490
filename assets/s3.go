package assets

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectGetter is the subset of the S3 client used by Loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client creates an S3 client from the default AWS configuration
// (environment, shared config, instance role). An empty region keeps the
// configured default.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*awscfg.LoadOptions) error
	if region != "" {
		opts = append(opts, awscfg.WithRegion(region))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("assets: aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// ParseS3URL splits s3://bucket/key into bucket and key.
func ParseS3URL(src string) (bucket, key string, err error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", "", err
	}
	if !strings.EqualFold(u.Scheme, "s3") || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, src)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("assets: s3 url %q has no key", src)
	}
	return u.Host, key, nil
}

func (l *Loader) fetchS3(ctx context.Context, src string) ([]byte, error) {
	bucket, key, err := ParseS3URL(src)
	if err != nil {
		return nil, err
	}
	client, err := l.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()
	if out.ContentLength != nil && *out.ContentLength > l.maxBytes {
		return nil, ErrTooLarge
	}
	return l.readAll(out.Body)
}

// s3Client returns the configured client, creating one on first use.
func (l *Loader) s3Client(ctx context.Context) (ObjectGetter, error) {
	l.s3Once.Do(func() {
		if l.s3 != nil {
			return
		}
		c, err := NewS3Client(ctx, l.s3Region)
		if err != nil {
			l.s3Err = err
			return
		}
		l.s3 = c
	})
	if l.s3Err != nil {
		return nil, l.s3Err
	}
	return l.s3, nil
}
