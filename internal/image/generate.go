package image

import (
	"bytes"
	"context"
	"fmt"
	stdimage "image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"

	"github.com/go-playground/validator/v10"
	_ "golang.org/x/image/webp"
)

const (
	DefaultTextToImageModel  = "Tongyi-MAI/Z-Image"
	DefaultImageToImageModel = "black-forest-labs/FLUX.2-klein-4B"
	DefaultWidth             = 768
	DefaultHeight            = 1024
	DefaultStrength          = 0.65
)

type Mode string

const (
	ModeTextToImage  Mode = "text-to-image"
	ModeImageToImage Mode = "image-to-image"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeTextToImage:
		return ModeTextToImage, nil
	case ModeImageToImage:
		return ModeImageToImage, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Credential is the bearer token for the inference API. It redacts itself
// when printed or logged; convert with string() to read it.
type Credential string

func (Credential) String() string { return "[redacted]" }

func (Credential) LogValue() slog.Value { return slog.StringValue("[redacted]") }

// Request is implemented only by TextToImage and ImageToImage.
type Request interface {
	Mode() Mode
	Validate() error
	request()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type TextToImage struct {
	Model  string `json:"model" validate:"required"`
	Prompt string `json:"prompt" validate:"required"`
	Width  int    `json:"width" validate:"gt=0"`
	Height int    `json:"height" validate:"gt=0"`
}

func NewTextToImage(model, prompt string, width, height int) (TextToImage, error) {
	req := TextToImage{Model: model, Prompt: prompt, Width: width, Height: height}
	if err := req.Validate(); err != nil {
		return TextToImage{}, err
	}
	return req, nil
}

func (TextToImage) Mode() Mode { return ModeTextToImage }

func (r TextToImage) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &DispatchError{Kind: InvalidInput, Err: err}
	}
	return nil
}

func (TextToImage) request() {}

type ImageToImage struct {
	Model       string  `json:"model" validate:"required"`
	Prompt      string  `json:"prompt" validate:"required"`
	SourceImage []byte  `json:"-" validate:"min=1"`
	Strength    float64 `json:"strength" validate:"gte=0,lte=1"`
}

// NewImageToImage validates the request and takes a private copy of source.
func NewImageToImage(model, prompt string, source []byte, strength float64) (ImageToImage, error) {
	req := ImageToImage{
		Model:       model,
		Prompt:      prompt,
		SourceImage: bytes.Clone(source),
		Strength:    strength,
	}
	if err := req.Validate(); err != nil {
		return ImageToImage{}, err
	}
	return req, nil
}

func (ImageToImage) Mode() Mode { return ModeImageToImage }

func (r ImageToImage) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &DispatchError{Kind: InvalidInput, Err: err}
	}
	if _, _, err := stdimage.DecodeConfig(bytes.NewReader(r.SourceImage)); err != nil {
		return &DispatchError{Kind: InvalidInput, Err: fmt.Errorf("decode source image: %w", err)}
	}
	return nil
}

func (ImageToImage) request() {}

// Inference is the remote service that turns requests into image bytes.
type Inference interface {
	TextToImage(context.Context, Credential, TextToImage) ([]byte, error)
	ImageToImage(context.Context, Credential, ImageToImage) ([]byte, error)
}
