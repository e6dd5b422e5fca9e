package cli

import (
	"github.com/spf13/cobra"

	"recipe-importer/internal/core/boundary"
	"recipe-importer/internal/core/source"
	"recipe-importer/internal/pkg/common"
)

func newSegmentsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "segments [file]",
		Short: "Split text containing several recipes into segments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			data, err := readInput(cmd, path)
			if err != nil {
				return err
			}
			lines := source.SplitText(string(data))
			if len(lines) == 0 {
				return common.ErrNoTextDetected
			}

			a, err := root.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			segments := a.Detector.Detect(cmd.Context(), lines)
			if segments == nil {
				segments = []boundary.Segment{}
			}
			return writeJSON(cmd, segments)
		},
	}
}
