package handler

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
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

type mockDispatcher struct {
	img  []byte
	err  error
	req  image.Request
	cred image.Credential
}

func (m *mockDispatcher) Dispatch(_ context.Context, req image.Request, cred image.Credential) (image.GeneratedImage, error) {
	m.req, m.cred = req, cred
	if m.err != nil {
		return image.GeneratedImage{}, m.err
	}
	return image.NewGeneratedImage(m.img), nil
}

type mockRandomizer struct {
	model, prompt string
	calls         int
}

func (m *mockRandomizer) Randomize(context.Context) (string, string, error) {
	m.calls++
	return m.model, m.prompt, nil
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

type recordingInvalidator struct {
	paths []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, paths []string) error {
	r.paths = append(r.paths, paths...)
	return nil
}

type mockFeed struct {
	data []byte
	err  error
}

func (m *mockFeed) Generate(context.Context) ([]byte, error) { return m.data, m.err }

type failingInvalidator struct{ err error }

func (f failingInvalidator) Invalidate(context.Context, []string) error { return f.err }
