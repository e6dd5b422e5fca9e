package classify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-importer/internal/core/classify"
)

func TestRuleModel(t *testing.T) {
	m := classify.NewRuleModel()
	tests := []struct {
		text string
		want classify.Label
	}{
		{"CHOCOLATE CHIP COOKIES", classify.LabelTitle},
		{"Classic Banana Bread", classify.LabelTitle},
		{"2 cups flour", classify.LabelIngredient},
		{"1 cup sugar", classify.LabelIngredient},
		{"½ tsp salt", classify.LabelIngredient},
		{"3 eggs", classify.LabelIngredient},
		{"salt and pepper to taste", classify.LabelIngredient},
		{"Mix dry ingredients.", classify.LabelInstruction},
		{"Bake at 350F.", classify.LabelInstruction},
		{"1. Preheat the oven to 180C.", classify.LabelInstruction},
		{"Step 2: whisk the eggs", classify.LabelInstruction},
		{"Prep time: 15 minutes", classify.LabelTime},
		{"Total Time 1 hour 30 minutes", classify.LabelTime},
		{"45 mins", classify.LabelTime},
		{"Serves 4", classify.LabelServing},
		{"Makes 24 cookies", classify.LabelServing},
		{"6 servings", classify.LabelServing},
		{"Ingredients:", classify.LabelUnknown},
		{"this is a family favourite that we make every single autumn weekend", classify.LabelSummary},
		{"", classify.LabelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			label, conf, err := m.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, label)
			assert.GreaterOrEqual(t, conf, 0.0)
			assert.LessOrEqual(t, conf, 1.0)
		})
	}
}

func TestRuleModel_ScenarioLinesPassThreshold(t *testing.T) {
	c := classify.New(classify.NewRuleModel())
	res := c.ClassifyAll(context.Background(), []string{
		"CHOCOLATE CHIP COOKIES", "2 cups flour", "1 cup sugar", "Mix dry ingredients.", "Bake at 350F.",
	})

	assert.Equal(t, "CHOCOLATE CHIP COOKIES", res.Title)
	assert.Equal(t, []string{"2 cups flour", "1 cup sugar"}, res.Bucket(classify.LabelIngredient))
	assert.Equal(t, []string{"Mix dry ingredients.", "Bake at 350F."}, res.Bucket(classify.LabelInstruction))
	assert.Empty(t, res.Skipped)
}

func TestPredicates(t *testing.T) {
	assert.True(t, classify.LooksLikeIngredient("2 tbsp olive oil"))
	assert.True(t, classify.LooksLikeIngredient("• a handful of herbs"))
	assert.True(t, classify.LooksLikeIngredient("Fresh garlic"))
	assert.False(t, classify.LooksLikeIngredient("Enjoy with friends"))

	assert.True(t, classify.LooksLikeInstruction("Stir everything together until smooth."))
	assert.True(t, classify.LooksLikeInstruction("3) Leave the dough somewhere warm"))
	assert.False(t, classify.LooksLikeInstruction("Stir well."), "too short")

	assert.True(t, classify.HasStepNumber("Step 4 - fold in"))
	assert.False(t, classify.HasStepNumber("1.5 cups milk"))

	assert.True(t, classify.StartsWithCookingVerb("Preheat the oven"))
	assert.False(t, classify.StartsWithCookingVerb("2 cups flour"))
}

func TestSectionHeader(t *testing.T) {
	for text, want := range map[string]string{
		"Ingredients:":       "ingredients",
		"DIRECTIONS":         "directions",
		"For the frosting":   "for the",
		"Notes":              "notes",
		"Prep Time: 10 mins": "prep time",
	} {
		got, ok := classify.SectionHeader(text)
		assert.True(t, ok, text)
		assert.Equal(t, want, got, text)
	}

	_, ok := classify.SectionHeader("Notes on sourcing the very best vanilla beans")
	assert.False(t, ok)
	_, ok = classify.SectionHeader("2 cups flour")
	assert.False(t, ok)
}

func TestCapitalization(t *testing.T) {
	assert.True(t, classify.IsAllCaps("SOUP RECIPE 2"))
	assert.False(t, classify.IsAllCaps("123"))
	assert.InDelta(t, 2.0/3, classify.CapitalizedRatio("Lemon Bars deluxe"), 1e-9)
}
