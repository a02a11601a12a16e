package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dmorgan81/imagegen/internal/cli"
	"github.com/dmorgan81/imagegen/internal/config"
	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/dmorgan81/imagegen/internal/inject"
	"github.com/dmorgan81/imagegen/internal/log"
	"github.com/joho/godotenv"
	"github.com/samber/do"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := log.NewContext(context.Background(), log.New(os.Stderr, cfg.LogLevel))
	injector := inject.Setup(ctx, cfg)
	runner, err := do.Invoke[*cli.Runner](injector)
	if err == nil {
		err = cli.NewCommand(runner).ExecuteContext(ctx)
	}
	_ = injector.Shutdown()
	if err != nil {
		if errors.Is(err, image.ErrMissingCredential) {
			err = cli.ErrMissingToken
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
