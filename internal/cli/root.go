// Package cli 實作 recipectl 的 cobra 指令
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"recipe-importer/internal/app"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// ConfigLoader 載入設定的函式，正式環境為 config.LoadConfig
type ConfigLoader func() (*config.Config, error)

type rootOptions struct {
	load    ConfigLoader
	verbose bool
}

// NewRootCommand 建立 recipectl 根指令
func NewRootCommand(load ConfigLoader) *cobra.Command {
	opts := &rootOptions{load: load}

	root := &cobra.Command{
		Use:   "recipectl",
		Short: "recipectl: import recipes from text, HTML, images and web pages",
		Long: `recipectl runs the recipe import pipeline once and prints the result as JSON.

Usage:
  recipectl import [file|url] [flags]
  recipectl segments [file]
  recipectl ingredient "<text>"...`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Write logs to stderr and the log directory")

	root.AddCommand(
		newImportCommand(opts),
		newSegmentsCommand(opts),
		newIngredientCommand(),
	)
	return root
}

// Execute 執行根指令
func Execute() {
	if err := NewRootCommand(config.LoadConfig).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// build 載入設定並組裝元件
func (o *rootOptions) build(ctx context.Context) (*app.App, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if o.verbose {
		if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
			return nil, err
		}
	}
	return app.Build(ctx, cfg)
}

// readInput 讀取檔案；"-" 或空字串時讀 stdin
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
