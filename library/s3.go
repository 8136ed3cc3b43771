// SPDX-License-Identifier: EPL-2.0

package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options holds bucket access settings.
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// s3API is the subset of the S3 client the fetcher uses.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Fetcher reads tracks from Bucket below Prefix.
type S3Fetcher struct {
	client   s3API
	bucket   string
	prefix   string
	MaxBytes int64
}

// NewS3Fetcher builds a client from opts. A custom Endpoint switches to
// path-style addressing for S3 compatible stores.
func NewS3Fetcher(opts S3Options) *S3Fetcher {
	return &S3Fetcher{
		client:   newS3Client(opts),
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
		MaxBytes: DefaultMaxBytes,
	}
}

func newS3Client(opts S3Options) *s3.Client {
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	options := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = region
		},
	}
	if opts.AccessKeyID != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")
		options = append(options, func(o *s3.Options) {
			o.Credentials = creds
		})
	}
	if opts.Endpoint != "" {
		options = append(options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}

	return s3.New(s3.Options{}, options...)
}

func (f *S3Fetcher) key(name string) string {
	if f.prefix == "" {
		return name
	}
	return strings.TrimSuffix(f.prefix, "/") + "/" + name
}

func (f *S3Fetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	return readLimited(out.Body, f.MaxBytes)
}

// List returns the audio object names below the prefix, sorted.
func (f *S3Fetcher) List(ctx context.Context) ([]string, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(f.bucket)}
	prefix := ""
	if f.prefix != "" {
		prefix = strings.TrimSuffix(f.prefix, "/") + "/"
		in.Prefix = aws.String(prefix)
	}

	var names []string
	pages := s3.NewListObjectsV2Paginator(f.client, in)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if IsAudioName(name) && ValidateName(name) == nil {
				names = append(names, name)
			}
		}
	}

	slices.Sort(names)
	return names, nil
}
