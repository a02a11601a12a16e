package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/lo"
)

// S3Store reads and writes objects. Names may be s3:// URIs; plain keys
// resolve against Bucket.
type S3Store struct {
	Client *s3.Client
	Bucket string
}

func (u *S3Store) resolve(name string) (string, string, error) {
	loc := ParseLocation(name)
	bucket := lo.Ternary(loc.Bucket != "", loc.Bucket, u.Bucket)
	if bucket == "" {
		return "", "", fmt.Errorf("no bucket for %q", name)
	}
	if loc.Key == "" {
		return "", "", fmt.Errorf("no object key in %q", name)
	}
	return bucket, loc.Key, nil
}

func (u *S3Store) Upload(ctx context.Context, params UploadParams) error {
	bucket, key, err := u.resolve(params.Name)
	if err != nil {
		return err
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"key", key,
		"content-type", params.ContentType,
		"metadata", params.Metadata,
		"bucket", bucket,
	)
	log.Info("uploading to s3")

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	return err
}

func (u *S3Store) Download(ctx context.Context, name string) ([]byte, error) {
	bucket, key, err := u.resolve(name)
	if err != nil {
		return nil, err
	}
	log.FromContextOrDiscard(ctx).WithGroup("s3").Info("downloading from s3", "bucket", bucket, "key", key)

	out, err := u.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

type CloudFrontInvalidator struct {
	Client       *cloudfront.Client
	Distribution string
}

func (i *CloudFrontInvalidator) Invalidate(ctx context.Context, paths []string) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("cloudfront").With("paths", paths, "distribution", i.Distribution)
	log.Info("invalidating paths in cloudfront")

	_, err := i.Client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(i.Distribution),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(time.Now().UTC().Format("20060102150405.000000000")),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	return err
}
