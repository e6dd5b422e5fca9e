package recipe_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-importer/internal/core/classify"
	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/recipe"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"PT15M", 15 * time.Minute, true},
		{"PT1H30M", 90 * time.Minute, true},
		{"P1DT2H", 26 * time.Hour, true},
		{"pt45s", 45 * time.Second, true},
		{"1 hour 30 minutes", 90 * time.Minute, true},
		{"Prep Time: 15 Minutes", 15 * time.Minute, true},
		{"2 hrs", 2 * time.Hour, true},
		{"45 mins", 45 * time.Minute, true},
		{"20", 20 * time.Minute, true},
		{"1.5", 90 * time.Second, true},
		{"", 0, false},
		{"overnight", 0, false},
		{"P", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := recipe.ParseDuration(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "1 minute", recipe.FormatMinutes(1))
	assert.Equal(t, "45 minutes", recipe.FormatMinutes(45))
	assert.Equal(t, "1 hour", recipe.FormatMinutes(60))
	assert.Equal(t, "2 hours 5 minutes", recipe.FormatMinutes(125))
	assert.Equal(t, "", recipe.FormatMinutes(0))
}

func TestDraft_FieldAccessors(t *testing.T) {
	d := recipe.NewDraft()
	d.Append(recipe.FieldIngredients, "2 cups flour")
	d.Append(recipe.FieldIngredients, "1 cup sugar")
	d.Set(recipe.FieldInstructions, []string{"Mix.", "Bake."})

	assert.Equal(t, []string{"2 cups flour", "1 cup sugar"}, d.Ingredients())
	assert.Equal(t, []string{"Mix.", "Bake."}, d.Instructions())
	assert.Equal(t, []string{}, d.Notes())
	assert.False(t, d.IsEmpty())

	got := d.Ingredients()
	got[0] = "mutated"
	assert.Equal(t, "2 cups flour", d.Ingredients()[0], "accessors return copies")
}

func TestDraft_Clone(t *testing.T) {
	d := recipe.NewDraft()
	d.Title = "Cake"
	d.Append(recipe.FieldSummary, "Light and fluffy")
	d.RawText = []string{"CAKE"}

	c := d.Clone()
	c.Title = "Pie"
	c.Append(recipe.FieldSummary, "extra")
	c.RawText[0] = "PIE"

	assert.Equal(t, "Cake", d.Title)
	assert.Equal(t, []string{"Light and fluffy"}, d.Summary())
	assert.Equal(t, []string{"CAKE"}, d.RawText)
}

func TestDraft_JSON(t *testing.T) {
	d := recipe.NewDraft()
	d.Title = "Cookies"
	d.Append(recipe.FieldIngredients, "2 cups flour")
	d.SkippedLines = []classify.ClassifiedLine{{Text: "noise", Label: classify.LabelUnknown}}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ingredients":["2 cups flour"]`)
	assert.Contains(t, string(data), `"instructions":[]`)

	var back recipe.Draft
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Cookies", back.Title)
	assert.Equal(t, []string{"2 cups flour"}, back.Ingredients())
	assert.Len(t, back.SkippedLines, 1)
}

func TestFieldForLabel(t *testing.T) {
	f, ok := recipe.FieldForLabel(classify.LabelTime)
	assert.True(t, ok)
	assert.Equal(t, recipe.FieldTimings, f)

	_, ok = recipe.FieldForLabel(classify.LabelTitle)
	assert.False(t, ok)
	_, ok = recipe.FieldForLabel(classify.LabelUnknown)
	assert.False(t, ok)
}

func TestDraft_ToRecipe(t *testing.T) {
	d := recipe.NewDraft()
	d.Title = "Chocolate Chip Cookies"
	d.Append(recipe.FieldSummary, "Chewy.", "Classic.")
	d.Append(recipe.FieldServings, "Serves 24")
	d.Append(recipe.FieldTimings, "Prep Time: 15 Minutes", "Bake Time: 10 Minutes")
	d.Append(recipe.FieldIngredients, "2 cup flour", "1 cup sugar, packed")
	d.Append(recipe.FieldInstructions, "Mix.", "Bake.")

	r := d.ToRecipe()

	assert.Equal(t, "Chocolate Chip Cookies", r.Title)
	assert.Equal(t, "Chewy. Classic.", r.Description)
	assert.Equal(t, "Serves 24", r.Servings)
	require.Len(t, r.Timings, 2)
	assert.Equal(t, recipe.Timing{Label: "prep", Text: "Prep Time: 15 Minutes", Minutes: 15}, r.Timings[0])
	assert.Equal(t, "cook", r.Timings[1].Label)
	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, ingredient.UnitCup, r.Ingredients[1].Unit)
	assert.Equal(t, "packed", r.Ingredients[1].Comment)
	assert.Equal(t, recipe.MethodText, r.Method)
}

func TestDraftFromRecipe(t *testing.T) {
	r := &recipe.Recipe{
		Title:        "Soup",
		Description:  "Warming.",
		Servings:     "4 servings",
		Timings:      []recipe.Timing{recipe.NewTiming("prep", "PT15M"), recipe.NewTiming("", "overnight")},
		Ingredients:  []ingredient.Ingredient{{Name: "salt"}},
		Instructions: []string{"Boil."},
	}

	d := recipe.DraftFromRecipe(r)

	assert.Equal(t, "Soup", d.Title)
	assert.Equal(t, []string{"Warming."}, d.Summary())
	assert.Equal(t, []string{"4 servings"}, d.Servings())
	assert.Equal(t, []string{"Prep time: 15 minutes", "overnight"}, d.Timings())
	assert.Equal(t, []string{"salt"}, d.Ingredients())
	assert.Equal(t, []string{"Boil."}, d.Instructions())
}
