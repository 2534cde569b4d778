package repository

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/svmesh/svmesh-web/internal/config"
)

// S3API is the subset of the S3 client the repository uses.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Credentials are static keys for S3-compatible storage. Empty keys fall
// back to the default AWS credential chain.
type S3Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

// S3ContentRepository stores files as <prefix><category>/<name> objects.
type S3ContentRepository struct { // implements ContentRepository, ContentWriter
	client S3API
	bucket string
	prefix string
}

func NewS3ContentRepository(ctx context.Context, cfg config.S3Config, creds S3Credentials) (*S3ContentRepository, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if creds.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading S3 configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3ContentRepositoryWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3ContentRepositoryWithClient(client S3API, bucket, prefix string) *S3ContentRepository {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3ContentRepository{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (r *S3ContentRepository) key(category, name string) string {
	return r.prefix + category + "/" + name
}

func (r *S3ContentRepository) List(ctx context.Context, category string) ([]string, error) {
	if !ValidCategory(category) {
		return nil, errors.Wrapf(ErrUnknownCategory, "category %q", category)
	}

	dir := r.prefix + category + "/"
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(r.bucket),
		Prefix:    aws.String(dir),
		Delimiter: aws.String("/"),
	})

	names := make([]string, 0)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "listing s3://%s/%s", r.bucket, dir)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), dir))
		}
	}

	return sortListing(category, keepMarkdown(names)), nil
}

func (r *S3ContentRepository) Read(ctx context.Context, category, name string) (*File, error) {
	if err := checkPath(category, name); err != nil {
		return nil, err
	}

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(category, name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, errors.Wrapf(ErrNotFound, "%s/%s", category, name)
		}
		return nil, errors.Wrapf(err, "getting %s/%s", category, name)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s/%s", category, name)
	}

	return &File{
		Category: category,
		Name:     name,
		Content:  content,
		ModTime:  aws.ToTime(out.LastModified),
	}, nil
}

func (r *S3ContentRepository) Save(ctx context.Context, category, name string, content []byte) error {
	if err := checkPath(category, name); err != nil {
		return err
	}

	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key(category, name)),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(config.CTypeMarkdown),
	})
	if err != nil {
		return errors.Wrapf(err, "putting %s/%s", category, name)
	}

	repoLogger.Debug().Str("bucket", r.bucket).Str("key", r.key(category, name)).Msg("Content file saved")
	return nil
}
