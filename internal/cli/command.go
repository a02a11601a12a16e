package cli

import (
	"fmt"

	"github.com/dmorgan81/imagegen/internal/image"
	"github.com/spf13/cobra"
)

func NewCommand(r *Runner) *cobra.Command {
	root := &cobra.Command{
		Use:           "imagegen",
		Short:         "Generate images with the Hugging Face Inference API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTextToImageCommand(r), newImageToImageCommand(r))
	return root
}

func newTextToImageCommand(r *Runner) *cobra.Command {
	var opts TextToImageOptions
	cmd := &cobra.Command{
		Use:     "text2image",
		Aliases: []string{"generate"},
		Short:   "Generate an image from a text prompt",
		Example: "  imagegen text2image --prompt 'a red fox in snow' --output out/fox.png",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := r.TextToImage(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Model, "model", image.DefaultTextToImageModel, "Model id")
	flags.StringVar(&opts.Prompt, "prompt", "", "Text prompt")
	flags.StringVar(&opts.Output, "output", "", "Output path or s3://bucket/key")
	flags.IntVar(&opts.Width, "width", image.DefaultWidth, "Image width in pixels")
	flags.IntVar(&opts.Height, "height", image.DefaultHeight, "Image height in pixels")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newImageToImageCommand(r *Runner) *cobra.Command {
	var opts ImageToImageOptions
	cmd := &cobra.Command{
		Use:     "img2img",
		Aliases: []string{"style"},
		Short:   "Restyle an existing image with a text prompt",
		Example: "  imagegen img2img --input cat.png --prompt 'watercolor' --output out/cat.png --strength 0.5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := r.ImageToImage(cmd.Context(), opts)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Model, "model", image.DefaultImageToImageModel, "Model id")
	flags.StringVar(&opts.Prompt, "prompt", "", "Text prompt")
	flags.StringVar(&opts.Input, "input", "", "Source image path or s3://bucket/key")
	flags.StringVar(&opts.Output, "output", "", "Output path or s3://bucket/key")
	flags.Float64Var(&opts.Strength, "strength", image.DefaultStrength, "How far to move from the source image, 0 to 1")
	_ = cmd.MarkFlagRequired("prompt")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
