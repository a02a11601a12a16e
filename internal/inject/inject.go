package inject

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/imagegen/internal/cli"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/feed"
	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/param"
	"github.com/dmorgan81/imagegen/internal/prompt"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
)

// Setup registers every service lazily; AWS clients are only built when
// something that needs them is invoked.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue[*config.Config](injector, cfg)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		awsCfg, err := do.Invoke[aws.Config](i)
		if err != nil {
			return nil, err
		}
		return ssm.NewFromConfig(awsCfg), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		awsCfg, err := do.Invoke[aws.Config](i)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(awsCfg), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		awsCfg, err := do.Invoke[aws.Config](i)
		if err != nil {
			return nil, err
		}
		return cloudfront.NewFromConfig(awsCfg), nil
	})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)
	do.Provide[*param.TokenSource](injector, func(i *do.Injector) (*param.TokenSource, error) {
		return &param.TokenSource{
			Value: cfg.Token,
			Path:  cfg.TokenParam,
			Fetcher: func() (param.Fetcher, error) {
				return do.Invoke[param.Fetcher](i)
			},
		}, nil
	})
	do.ProvideNamed[[]string](injector, "prompts", func(i *do.Injector) ([]string, error) {
		if cfg.PromptsParam == "" {
			return nil, nil
		}
		return do.MustInvoke[param.Fetcher](i).FetchAll(ctx, cfg.PromptsParam)
	})
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "site_url", cfg.SiteURL)

	do.Provide[image.Inference](injector, func(i *do.Injector) (image.Inference, error) {
		return image.NewHuggingFaceClient(cfg.Endpoint, cfg.Timeout), nil
	})
	do.Provide[*image.Dispatcher](injector, func(i *do.Injector) (*image.Dispatcher, error) {
		return image.NewDispatcher(do.MustInvoke[image.Inference](i)), nil
	})

	do.Provide[*store.S3Store](injector, func(i *do.Injector) (*store.S3Store, error) {
		client, err := do.Invoke[*s3.Client](i)
		if err != nil {
			return nil, err
		}
		return &store.S3Store{Client: client, Bucket: cfg.Bucket}, nil
	})
	do.Provide[store.Store](injector, func(i *do.Injector) (store.Store, error) {
		return &store.Router{
			Local: &store.FileStore{},
			Remote: func() (store.Store, error) {
				return do.Invoke[*store.S3Store](i)
			},
		}, nil
	})
	do.Provide[store.Invalidator](injector, func(i *do.Injector) (store.Invalidator, error) {
		if cfg.Distribution == "" {
			return store.NopInvalidator{}, nil
		}
		return &store.CloudFrontInvalidator{
			Client:       do.MustInvoke[*cloudfront.Client](i),
			Distribution: cfg.Distribution,
		}, nil
	})

	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*feed.Generator](injector, feed.NewS3Generator)
	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[*cli.Runner](injector, cli.NewRunner)

	return injector
}
