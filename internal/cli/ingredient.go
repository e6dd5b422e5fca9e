package cli

import (
	"github.com/spf13/cobra"

	"recipe-importer/internal/core/ingredient"
)

type parsedIngredient struct {
	Input      string                `json:"input"`
	Ingredient ingredient.Ingredient `json:"ingredient"`
	Display    string                `json:"display"`
}

func newIngredientCommand() *cobra.Command {
	return &cobra.Command{
		Use:   `ingredient "<text>"...`,
		Short: "Parse ingredient lines into quantity, unit, name and comment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]parsedIngredient, 0, len(args))
			for _, arg := range args {
				ing, ok := ingredient.ParseDetailed(arg)
				if !ok {
					continue
				}
				out = append(out, parsedIngredient{Input: arg, Ingredient: ing, Display: ing.Display()})
			}
			return writeJSON(cmd, out)
		},
	}
}
