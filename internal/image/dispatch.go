package image

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/imagegen/internal/log"
)

// Dispatcher sends one request to the inference service per call. It keeps
// no state between calls and may be shared across goroutines.
type Dispatcher struct {
	inference Inference
}

func NewDispatcher(inference Inference) *Dispatcher {
	return &Dispatcher{inference: inference}
}

// deref turns pointer requests into values; a typed nil pointer becomes nil.
func deref(req Request) Request {
	switch r := req.(type) {
	case *TextToImage:
		if r == nil {
			return nil
		}
		return *r
	case *ImageToImage:
		if r == nil {
			return nil
		}
		return *r
	}
	return req
}

func (d *Dispatcher) Dispatch(ctx context.Context, req Request, cred Credential) (GeneratedImage, error) {
	if strings.TrimSpace(string(cred)) == "" {
		return GeneratedImage{}, &DispatchError{Kind: MissingCredential}
	}
	if req = deref(req); req == nil {
		return GeneratedImage{}, &DispatchError{Kind: InvalidInput, Err: errors.New("nil request")}
	}
	if err := req.Validate(); err != nil {
		return GeneratedImage{}, err
	}

	log := log.FromContextOrDiscard(ctx).WithGroup("dispatcher").With("mode", req.Mode())
	log.Info("dispatching request")

	var (
		data []byte
		err  error
	)
	switch r := req.(type) {
	case TextToImage:
		data, err = d.inference.TextToImage(ctx, cred, r)
	case ImageToImage:
		data, err = d.inference.ImageToImage(ctx, cred, r)
	default:
		return GeneratedImage{}, &DispatchError{Kind: InvalidInput, Err: fmt.Errorf("unsupported request %T", req)}
	}
	if err != nil {
		log.Warn("inference failed", "error", err)
		return GeneratedImage{}, &DispatchError{Kind: RemoteFailure, Err: err}
	}
	if len(data) == 0 {
		return GeneratedImage{}, &DispatchError{Kind: RemoteFailure, Err: errors.New("empty response body")}
	}

	img := NewGeneratedImage(data)
	if !strings.HasPrefix(img.MIMEType, "image/") {
		return GeneratedImage{}, &DispatchError{Kind: RemoteFailure, Err: fmt.Errorf("response is not an image: %s", img.MIMEType)}
	}
	log.Info("received image", "mime", img.MIMEType, "bytes", len(img.Data))
	return img, nil
}
