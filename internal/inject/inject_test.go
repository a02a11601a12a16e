package inject

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dmorgan81/imagegen/internal/cli"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/handler"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/param"
	"github.com/dmorgan81/imagegen/internal/store"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateAWS(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
}

func TestSetup(t *testing.T) {
	isolateAWS(t)
	cfg := &config.Config{
		Token:    "hf_test",
		Endpoint: "https://example.com/models",
		Bucket:   "gallery",
	}
	injector := Setup(context.Background(), cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*cli.Runner](injector)
	require.NoError(t, err)
	_, err = do.Invoke[*handler.Handler](injector)
	require.NoError(t, err)

	tokens := do.MustInvoke[*param.TokenSource](injector)
	cred, err := tokens.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Credential("hf_test"), cred)

	assert.IsType(t, store.NopInvalidator{}, do.MustInvoke[store.Invalidator](injector))
	assert.Empty(t, do.MustInvokeNamed[[]string](injector, "prompts"))
}

func TestSetupCloudFront(t *testing.T) {
	isolateAWS(t)
	injector := Setup(context.Background(), &config.Config{Endpoint: "https://example.com", Distribution: "E123"})
	t.Cleanup(func() { _ = injector.Shutdown() })

	inv := do.MustInvoke[store.Invalidator](injector)
	require.IsType(t, &store.CloudFrontInvalidator{}, inv)
	assert.Equal(t, "E123", inv.(*store.CloudFrontInvalidator).Distribution)
}

func TestSetupLocalRunnerWithBrokenAWSProfile(t *testing.T) {
	isolateAWS(t)
	t.Setenv("AWS_PROFILE", "doesnotexist")
	injector := Setup(context.Background(), &config.Config{Endpoint: "https://example.com"})
	t.Cleanup(func() { _ = injector.Shutdown() })

	_, err := do.Invoke[*cli.Runner](injector)
	require.NoError(t, err)

	router := do.MustInvoke[store.Store](injector)
	output := filepath.Join(t.TempDir(), "fox.png")
	require.NoError(t, router.Upload(context.Background(), store.UploadParams{Name: output, Data: []byte("png")}))
	assert.FileExists(t, output)

	_, err = router.Download(context.Background(), "s3://gallery/fox.png")
	assert.Error(t, err)
}
