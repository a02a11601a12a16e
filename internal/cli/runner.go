package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/param"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
)

var ErrMissingToken = errors.New("missing " + config.TokenEnv + " env var")

type Dispatcher interface {
	Dispatch(context.Context, image.Request, image.Credential) (image.GeneratedImage, error)
}

type TokenSource interface {
	Token(context.Context) (image.Credential, error)
}

type TextToImageOptions struct {
	Model  string
	Prompt string
	Output string
	Width  int
	Height int
}

type ImageToImageOptions struct {
	Model    string
	Prompt   string
	Input    string
	Output   string
	Strength float64
}

// Runner backs the CLI subcommands: resolve the token, build the request,
// dispatch it and write the image.
type Runner struct {
	dispatcher Dispatcher
	store      store.Store
	tokens     TokenSource
}

func NewRunner(i *do.Injector) (*Runner, error) {
	return &Runner{
		dispatcher: do.MustInvoke[*image.Dispatcher](i),
		store:      do.MustInvoke[store.Store](i),
		tokens:     do.MustInvoke[*param.TokenSource](i),
	}, nil
}

func (r *Runner) token(ctx context.Context) (image.Credential, error) {
	cred, err := r.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(cred)) == "" {
		return "", ErrMissingToken
	}
	return cred, nil
}

func (r *Runner) TextToImage(ctx context.Context, opts TextToImageOptions) (string, error) {
	cred, err := r.token(ctx)
	if err != nil {
		return "", err
	}
	req, err := image.NewTextToImage(opts.Model, opts.Prompt, opts.Width, opts.Height)
	if err != nil {
		return "", err
	}
	return r.run(ctx, req, cred, opts.Output)
}

func (r *Runner) ImageToImage(ctx context.Context, opts ImageToImageOptions) (string, error) {
	cred, err := r.token(ctx)
	if err != nil {
		return "", err
	}
	src, err := r.store.Download(ctx, opts.Input)
	if err != nil {
		return "", fmt.Errorf("read input %s: %w", opts.Input, err)
	}
	req, err := image.NewImageToImage(opts.Model, opts.Prompt, src, opts.Strength)
	if err != nil {
		return "", err
	}
	return r.run(ctx, req, cred, opts.Output)
}

func (r *Runner) run(ctx context.Context, req image.Request, cred image.Credential, output string) (string, error) {
	img, err := r.dispatcher.Dispatch(ctx, req, cred)
	if err != nil {
		return "", err
	}

	name := output
	if !store.ParseLocation(output).Remote() {
		if name, err = filepath.Abs(output); err != nil {
			return "", err
		}
		if ext := filepath.Ext(name); ext != "" && !strings.EqualFold(ext, img.Extension) {
			log.FromContextOrDiscard(ctx).Warn("output extension does not match image type", "output", name, "mime", img.MIMEType)
		}
	}

	if err := r.store.Upload(ctx, store.UploadParams{
		Name:        name,
		Data:        img.Data,
		ContentType: img.MIMEType,
	}); err != nil {
		return "", fmt.Errorf("write output %s: %w", name, err)
	}
	return name, nil
}
