package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
)

// HuggingFaceClient calls the Hugging Face Inference API. A zero timeout
// leaves the request bounded only by the caller's context.
type HuggingFaceClient struct {
	client   *resty.Client
	endpoint string
}

func NewHuggingFaceClient(endpoint string, timeout time.Duration) *HuggingFaceClient {
	client := resty.New().
		SetHeader("User-Agent", "imagegen/1.0").
		SetHeader("Accept", "image/*")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HuggingFaceClient{
		client:   client,
		endpoint: strings.TrimSuffix(endpoint, "/"),
	}
}

type payload struct {
	Inputs     string `json:"inputs"`
	Parameters any    `json:"parameters,omitempty"`
}

type textToImageParameters struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type imageToImageParameters struct {
	Prompt   string  `json:"prompt"`
	Strength float64 `json:"strength"`
}

func (c *HuggingFaceClient) TextToImage(ctx context.Context, cred Credential, req TextToImage) ([]byte, error) {
	return c.post(ctx, cred, req.Model, payload{
		Inputs:     req.Prompt,
		Parameters: textToImageParameters{Width: req.Width, Height: req.Height},
	})
}

func (c *HuggingFaceClient) ImageToImage(ctx context.Context, cred Credential, req ImageToImage) ([]byte, error) {
	return c.post(ctx, cred, req.Model, payload{
		Inputs:     base64.StdEncoding.EncodeToString(req.SourceImage),
		Parameters: imageToImageParameters{Prompt: req.Prompt, Strength: req.Strength},
	})
}

func (c *HuggingFaceClient) post(ctx context.Context, cred Credential, model string, body payload) ([]byte, error) {
	target := c.modelURL(model)
	log := log.FromContextOrDiscard(ctx).WithGroup("huggingface").With("model", model)
	log.Info("generating image via inference api", "url", target)

	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(string(cred)).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(target)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}

	log.Info("received image via inference api", "content-type", resp.Header().Get("Content-Type"))
	return resp.Body(), nil
}

// modelURL escapes each segment of an "org/name" model id.
func (c *HuggingFaceClient) modelURL(model string) string {
	segments := lo.Map(strings.Split(model, "/"), func(s string, _ int) string {
		return url.PathEscape(s)
	})
	return c.endpoint + "/" + strings.Join(segments, "/")
}

// StatusError is a non-2xx answer from the inference API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference api returned status %d: %s", e.StatusCode, e.Message)
}

const maxErrorMessage = 512

func errorMessage(body []byte) string {
	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && len(parsed.Error) > 0 {
		var single string
		if json.Unmarshal(parsed.Error, &single) == nil {
			return truncate(single)
		}
		var many []string
		if json.Unmarshal(parsed.Error, &many) == nil {
			return truncate(strings.Join(many, "; "))
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func truncate(s string) string {
	if len(s) <= maxErrorMessage {
		return s
	}
	cut := maxErrorMessage
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
