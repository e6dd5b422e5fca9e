package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"recipe-importer/internal/core/image"
	"recipe-importer/internal/core/pipeline"
)

type importOptions struct {
	raw    bool
	recipe bool
}

func newImportCommand(root *rootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import [file|url]",
		Short: "Import a recipe from a text, HTML or image file, a URL, or stdin",
		Long: `Import runs the pipeline once: acquire lines, reconstruct, classify,
assemble the draft and normalize it. URLs go through the web extractor.

Examples:
  recipectl import card.txt
  recipectl import page.html --recipe
  recipectl import photo.jpg
  recipectl import https://example.com/banana-bread
  pbpaste | recipectl import`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 1 {
				arg = args[0]
			}
			return runImport(cmd, root, opts, arg)
		},
	}
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Skip normalization of the assembled draft")
	cmd.Flags().BoolVar(&opts.recipe, "recipe", false, "Print the converted recipe instead of the draft")
	return cmd
}

func runImport(cmd *cobra.Command, root *rootOptions, opts *importOptions, arg string) error {
	ctx := cmd.Context()
	a, err := root.build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	src, err := importSource(cmd, a.Images, arg)
	if err != nil {
		return err
	}

	o := pipeline.New(a.Deps(), pipeline.WithPostProcess(!opts.raw))
	draft, err := o.Start(ctx, src)
	if err != nil {
		return err
	}

	if opts.recipe {
		r := draft.ToRecipe()
		if src.Kind == pipeline.SourceURL {
			r.SourceURL = src.URL
		}
		return writeJSON(cmd, r)
	}
	return writeJSON(cmd, draft)
}

// imageDecoder 檢查圖片格式與大小
type imageDecoder interface {
	Decode(data []byte) (*image.Image, error)
}

// importSource 依參數判斷來源種類
func importSource(cmd *cobra.Command, images imageDecoder, arg string) (pipeline.Source, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return pipeline.URLSource(arg), nil
	}

	data, err := readInput(cmd, arg)
	if err != nil {
		return pipeline.Source{}, err
	}

	switch strings.ToLower(filepath.Ext(arg)) {
	case ".html", ".htm":
		return pipeline.HTMLSource(string(data)), nil
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		img, err := images.Decode(data)
		if err != nil {
			return pipeline.Source{}, err
		}
		return pipeline.ImageSource(img.Data), nil
	}
	return pipeline.TextSource(string(data)), nil
}
