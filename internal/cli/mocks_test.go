package cli

import (
	"bytes"
	"context"
	stdimage "image"
	"image/png"
	"sync"
	"testing"

	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

type fakeInference struct {
	mu        sync.Mutex
	calls     int
	data      []byte
	err       error
	lastText  image.TextToImage
	lastImage image.ImageToImage
}

func (f *fakeInference) TextToImage(_ context.Context, _ image.Credential, req image.TextToImage) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastText = req
	return f.data, f.err
}

func (f *fakeInference) ImageToImage(_ context.Context, _ image.Credential, req image.ImageToImage) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastImage = req
	return f.data, f.err
}

type staticToken image.Credential

func (s staticToken) Token(context.Context) (image.Credential, error) {
	return image.Credential(s), nil
}

type memoryStore struct {
	mu      sync.Mutex
	objects map[string]store.UploadParams
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string]store.UploadParams{}}
}

func (m *memoryStore) Upload(_ context.Context, params store.UploadParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[params.Name] = params
	return nil
}

func (m *memoryStore) Download(_ context.Context, name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.objects[name].Data, nil
}
