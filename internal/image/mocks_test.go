package image

import (
	"bytes"
	"context"
	stdimage "image"
	"image/color"
	"image/png"
	"sync"
	"testing"
)

type recordingInference struct {
	mu        sync.Mutex
	calls     int
	lastCred  Credential
	lastText  *TextToImage
	lastImage *ImageToImage
	data      []byte
	err       error
}

func (m *recordingInference) TextToImage(_ context.Context, cred Credential, req TextToImage) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastCred = cred
	m.lastText = &req
	return m.data, m.err
}

func (m *recordingInference) ImageToImage(_ context.Context, cred Credential, req ImageToImage) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastCred = cred
	m.lastImage = &req
	return m.data, m.err
}

// neverCalled fails the test if the dispatcher reaches the network.
type neverCalled struct{ t *testing.T }

func (n neverCalled) TextToImage(context.Context, Credential, TextToImage) ([]byte, error) {
	n.t.Fatal("inference must not be called")
	return nil, nil
}

func (n neverCalled) ImageToImage(context.Context, Credential, ImageToImage) ([]byte, error) {
	n.t.Fatal("inference must not be called")
	return nil, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
