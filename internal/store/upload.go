package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmorgan81/imagegen/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
}

type Downloader interface {
	Download(ctx context.Context, name string) ([]byte, error)
}

type Store interface {
	Uploader
	Downloader
}

// FileStore reads and writes the local filesystem. Uploads create missing
// parent directories and never leave a partially written file behind.
type FileStore struct{}

func (*FileStore) Upload(ctx context.Context, params UploadParams) (err error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", params.Name, "bytes", len(params.Data))

	dir := filepath.Dir(params.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(params.Name)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(params.Data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), params.Name)
}

func (*FileStore) Download(ctx context.Context, name string) ([]byte, error) {
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("reading", "file", name)
	return os.ReadFile(name)
}
