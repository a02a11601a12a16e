package handler

import (
	"context"
	"errors"
	"time"

	"github.com/dmorgan81/imagegen/internal/feed"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/dmorgan81/imagegen/internal/param"
	"github.com/dmorgan81/imagegen/internal/prompt"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

var errNoSource = errors.New("image-to-image requires a source object")

type Input struct {
	Mode     string   `json:"mode,omitempty"`
	Model    string   `json:"model,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
	Source   string   `json:"source,omitempty"`
	Strength *float64 `json:"strength,omitempty"`
	Name     string   `json:"name,omitempty"`
}

type Output struct {
	Mode        string `json:"mode"`
	Model       string `json:"model"`
	Prompt      string `json:"prompt"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
}

type Dispatcher interface {
	Dispatch(context.Context, image.Request, image.Credential) (image.GeneratedImage, error)
}

type Randomizer interface {
	Randomize(context.Context) (string, string, error)
}

type TokenSource interface {
	Token(context.Context) (image.Credential, error)
}

type FeedGenerator interface {
	Generate(context.Context) ([]byte, error)
}

type Handler struct {
	randomizer  Randomizer
	dispatcher  Dispatcher
	tokens      TokenSource
	store       store.Store
	invalidator store.Invalidator
	feed        FeedGenerator
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		randomizer:  do.MustInvoke[*prompt.Randomizer](i),
		dispatcher:  do.MustInvoke[*image.Dispatcher](i),
		tokens:      do.MustInvoke[*param.TokenSource](i),
		store:       do.MustInvoke[*store.S3Store](i),
		invalidator: do.MustInvoke[store.Invalidator](i),
		feed:        do.MustInvoke[*feed.Generator](i),
	}, nil
}

func (h *Handler) request(ctx context.Context, mode image.Mode, input Input) (image.Request, error) {
	if mode == image.ModeTextToImage {
		return image.TextToImage{
			Model:  input.Model,
			Prompt: input.Prompt,
			Width:  lo.Ternary(input.Width != 0, input.Width, image.DefaultWidth),
			Height: lo.Ternary(input.Height != 0, input.Height, image.DefaultHeight),
		}, nil
	}

	if input.Source == "" {
		return nil, &image.DispatchError{Kind: image.InvalidInput, Err: errNoSource}
	}
	src, err := h.store.Download(ctx, input.Source)
	if err != nil {
		return nil, err
	}
	return image.ImageToImage{
		Model:       input.Model,
		Prompt:      input.Prompt,
		SourceImage: src,
		Strength:    lo.FromPtrOr(input.Strength, image.DefaultStrength),
	}, nil
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("handler").With("input", input)
	log.Info("handling lambda invocation")

	mode, err := image.ParseMode(input.Mode)
	if err != nil {
		return Output{}, &image.DispatchError{Kind: image.InvalidInput, Err: err}
	}

	if input.Prompt == "" {
		model, prompt, err := h.randomizer.Randomize(ctx)
		if err != nil {
			return Output{}, err
		}
		input.Model = lo.Ternary(input.Model != "", input.Model, model)
		input.Prompt = prompt
	}
	if input.Model == "" {
		input.Model = lo.Ternary(mode == image.ModeTextToImage, image.DefaultTextToImageModel, image.DefaultImageToImageModel)
	}

	latest := false
	if input.Name == "" {
		input.Name = time.Now().UTC().Format("20060102150405")
		latest = true
	}

	cred, err := h.tokens.Token(ctx)
	if err != nil {
		return Output{}, err
	}
	req, err := h.request(ctx, mode, input)
	if err != nil {
		return Output{}, err
	}
	img, err := h.dispatcher.Dispatch(ctx, req, cred)
	if err != nil {
		return Output{}, err
	}

	metadata := map[string]string{
		"date":   input.Name,
		"mode":   string(mode),
		"model":  input.Model,
		"prompt": input.Prompt,
	}
	key := input.Name + img.Extension
	upload := func(name string) error {
		return h.store.Upload(ctx, store.UploadParams{
			Name:        name,
			Data:        img.Data,
			ContentType: img.MIMEType,
			Metadata:    metadata,
		})
	}
	if err := upload(key); err != nil {
		return Output{}, err
	}

	// latest is only promoted once the feed lists the new image.
	if err := h.publishFeed(ctx); err != nil {
		log.Error("image uploaded but feed not updated", "key", key, "error", err)
		return Output{}, err
	}

	names := []string{key, feed.Name}
	if latest {
		if err := upload("latest" + img.Extension); err != nil {
			log.Error("image and feed published but latest not promoted", "key", key, "error", err)
			return Output{}, err
		}
		names = append(names, "latest"+img.Extension)
	}

	paths := lo.Map(names, func(n string, _ int) string { return "/" + n })
	if err := h.invalidator.Invalidate(ctx, paths); err != nil {
		log.Error("published but cdn not invalidated", "paths", paths, "error", err)
		return Output{}, err
	}

	log.Info("published image", "key", key)
	return Output{
		Mode:        string(mode),
		Model:       input.Model,
		Prompt:      input.Prompt,
		Key:         key,
		ContentType: img.MIMEType,
	}, nil
}

func (h *Handler) publishFeed(ctx context.Context) error {
	rss, err := h.feed.Generate(ctx)
	if err != nil {
		return err
	}
	return h.store.Upload(ctx, store.UploadParams{
		Name:        feed.Name,
		Data:        rss,
		ContentType: "application/rss+xml",
	})
}
