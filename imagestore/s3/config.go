package s3

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type options struct {
	prefix    string
	region    string
	client    Client
	uploadCfg UploadConfig
}

// Option is a function type that can be used to modify the Store.
type Option func(*options)

// WithPrefix sets the root prefix prepended to all keys
// (e.g. "firmware/").
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithRegion overrides the AWS region resolved from the environment.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithClient supplies a preconfigured client, skipping the default AWS
// config resolution.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithUploadConfig overrides the default upload tuning (part size,
// concurrency, checksums).
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *options) {
		o.uploadCfg = cfg
	}
}

// New creates an S3 image store for bucket. Unless WithClient is given, the
// client is built from the default AWS config chain (environment, shared
// config, IMDS).
func New(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	o := options{uploadCfg: DefaultUploadConfig()}
	for _, fn := range optFns {
		fn(&o)
	}

	client := o.client
	if client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if o.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(o.region))
		}

		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, err
		}
		client = s3.NewFromConfig(cfg)
	}

	return NewStoreWithConfig(client, bucket, o.prefix, o.uploadCfg), nil
}
