package mirror

import (
	"context"
	"strings"
)

// Options configure NewTarget.
type Options struct {
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

// NewTarget picks a target from a mirror path: s3://bucket/key uploads to S3,
// anything else is a filesystem path.
func NewTarget(ctx context.Context, path string, opts Options) (Target, error) {
	if strings.HasPrefix(strings.ToLower(path), "s3://") {
		bucket, key, err := ParseS3URL(path)
		if err != nil {
			return nil, err
		}
		return NewS3Target(ctx, S3Config{
			Bucket:    bucket,
			Key:       key,
			Region:    opts.S3Region,
			Endpoint:  opts.S3Endpoint,
			PathStyle: opts.S3PathStyle,
		})
	}
	return &FileTarget{Path: path}, nil
}
