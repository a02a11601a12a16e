package param

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/log"
)

// TokenSource resolves the inference credential at the process boundary.
// Value wins; Path is looked up through the fetcher only when Value is empty.
type TokenSource struct {
	Value   string
	Path    string
	Fetcher func() (Fetcher, error)
}

// Token returns an empty credential, not an error, when neither source is
// configured; the dispatcher reports that as a missing credential.
func (s *TokenSource) Token(ctx context.Context) (image.Credential, error) {
	if v := strings.TrimSpace(s.Value); v != "" {
		return image.Credential(v), nil
	}
	if s.Path == "" || s.Fetcher == nil {
		return "", nil
	}

	log.FromContextOrDiscard(ctx).Debug("resolving token from parameter store", "path", s.Path)
	fetcher, err := s.Fetcher()
	if err != nil {
		return "", fmt.Errorf("token fetcher: %w", err)
	}
	v, err := fetcher.Fetch(ctx, s.Path)
	if err != nil {
		return "", fmt.Errorf("fetch token %s: %w", s.Path, err)
	}
	return image.Credential(strings.TrimSpace(v)), nil
}
