package store

import (
	"context"
	"fmt"
	"strings"
)

const s3Scheme = "s3://"

// Location is either a local path (Bucket empty) or an S3 object.
type Location struct {
	Bucket string
	Key    string
}

func ParseLocation(name string) Location {
	if !strings.HasPrefix(name, s3Scheme) {
		return Location{Key: name}
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(name, s3Scheme), "/")
	return Location{Bucket: bucket, Key: key}
}

func (l Location) Remote() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.Remote() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Key
}

// Router sends s3:// names to Remote and everything else to Local. Remote
// is only resolved the first time an s3:// name is used.
type Router struct {
	Local  Store
	Remote func() (Store, error)
}

func (r *Router) pick(name string) (Store, error) {
	if !ParseLocation(name).Remote() {
		return r.Local, nil
	}
	if r.Remote == nil {
		return nil, fmt.Errorf("no remote store for %s", name)
	}
	return r.Remote()
}

func (r *Router) Upload(ctx context.Context, params UploadParams) error {
	s, err := r.pick(params.Name)
	if err != nil {
		return err
	}
	return s.Upload(ctx, params)
}

func (r *Router) Download(ctx context.Context, name string) ([]byte, error) {
	s, err := r.pick(name)
	if err != nil {
		return nil, err
	}
	return s.Download(ctx, name)
}
