package prompt

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/samber/do"
)

var ErrNoPrompts = errors.New("no prompt presets configured")

// Randomizer picks a "model|prompt" preset. It is not safe for concurrent use.
type Randomizer struct {
	prompts []string
	rnd     *rand.Rand
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	prompts := do.MustInvokeNamed[[]string](i, "prompts")
	return New(prompts, time.Now().UTC().UnixNano()), nil
}

func New(prompts []string, seed int64) *Randomizer {
	return &Randomizer{prompts, rand.New(rand.NewSource(seed))}
}

func (r *Randomizer) Randomize(ctx context.Context) (string, string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("randomizer")
	log.Info("getting random model and prompt", "presets", len(r.prompts))

	if len(r.prompts) == 0 {
		return "", "", ErrNoPrompts
	}
	preset := r.prompts[r.rnd.Intn(len(r.prompts))]
	model, prompt, ok := strings.Cut(preset, "|")
	model, prompt = strings.TrimSpace(model), strings.TrimSpace(prompt)
	if !ok || model == "" || prompt == "" {
		return "", "", fmt.Errorf("malformed preset %q, want model|prompt", preset)
	}
	return model, prompt, nil
}
