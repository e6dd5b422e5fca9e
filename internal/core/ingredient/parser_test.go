package ingredient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-importer/internal/core/ingredient"
)

func qty(v float64) *float64 { return &v }

func TestParse_TokenGrammar(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ingredient.Ingredient
	}{
		{"single token", "Salt", ingredient.Ingredient{Name: "Salt"}},
		{"quantity and name", "2 Apples", ingredient.Ingredient{Quantity: qty(2), Name: "Apples"}},
		{"two tokens without quantity", "black pepper", ingredient.Ingredient{Name: "black pepper"}},
		{"fraction with unit", "1/2 cup Sugar", ingredient.Ingredient{Quantity: qty(0.5), Unit: ingredient.UnitCup, Name: "Sugar"}},
		{"quantity without unit", "3 large eggs", ingredient.Ingredient{Quantity: qty(3), Name: "large eggs"}},
		{"no quantity three tokens", "fresh basil leaves", ingredient.Ingredient{Name: "fresh basil leaves"}},
		{"four tokens with unit", "2 cups all-purpose flour sifted", ingredient.Ingredient{Quantity: qty(2), Unit: ingredient.UnitCup, Name: "all-purpose flour sifted"}},
		{"unit alias case insensitive", "1 TBSP olive oil", ingredient.Ingredient{Quantity: qty(1), Unit: ingredient.UnitTablespoon, Name: "olive oil"}},
		{"fraction glyph", "½ tsp salt", ingredient.Ingredient{Quantity: qty(0.5), Unit: ingredient.UnitTeaspoon, Name: "salt"}},
		{"zero denominator is absorbed", "1/0 cup milk", ingredient.Ingredient{Name: "1/0 cup milk"}},
		{"extra whitespace", "  2   cups   water ", ingredient.Ingredient{Quantity: qty(2), Unit: ingredient.UnitCup, Name: "water"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ingredient.Parse(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.Name)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	_, ok := ingredient.Parse("   ")
	assert.False(t, ok)
}

func TestParseFraction(t *testing.T) {
	v, err := ingredient.ParseFraction("3/4")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, v, 1e-9)

	v, err = ingredient.ParseFraction("1.25")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, v, 1e-9)

	_, err = ingredient.ParseFraction("1/0")
	assert.Error(t, err)

	_, err = ingredient.ParseFraction("1/2/3")
	assert.Error(t, err)

	_, err = ingredient.ParseFraction("NaN")
	assert.Error(t, err)

	_, err = ingredient.ParseFraction("cup")
	assert.Error(t, err)
}

func TestParseQuantity_Glyphs(t *testing.T) {
	v, err := ingredient.ParseQuantity("1½")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, v, 1e-9)

	v, err = ingredient.ParseQuantity("⅔")
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, v, 1e-9)
}

func TestString_OmitsMissingParts(t *testing.T) {
	assert.Equal(t, "1/2 cup Sugar", ingredient.Ingredient{Quantity: qty(0.5), Unit: ingredient.UnitCup, Name: "Sugar"}.String())
	assert.Equal(t, "2 Apples", ingredient.Ingredient{Quantity: qty(2), Name: "Apples"}.String())
	assert.Equal(t, "cup Sugar", ingredient.Ingredient{Unit: ingredient.UnitCup, Name: "Sugar"}.String())
	assert.Equal(t, "Salt", ingredient.Ingredient{Name: "Salt"}.String())
	assert.Equal(t, "1.5 pound beef", ingredient.Ingredient{Quantity: qty(1.5), Unit: ingredient.UnitPound, Name: "beef"}.String())
}

func TestRoundTrip_WithUnit(t *testing.T) {
	cases := []ingredient.Ingredient{
		{Quantity: qty(0.5), Unit: ingredient.UnitCup, Name: "Sugar"},
		{Quantity: qty(1.0 / 3), Unit: ingredient.UnitTeaspoon, Name: "ground cinnamon"},
		{Quantity: qty(2.25), Unit: ingredient.UnitPound, Name: "chicken thighs"},
		{Quantity: qty(12), Unit: ingredient.UnitOunce, Name: "cream cheese"},
	}
	for _, want := range cases {
		got, ok := ingredient.Parse(want.String())
		require.True(t, ok)
		require.NotNil(t, got.Quantity)
		assert.InDelta(t, *want.Quantity, *got.Quantity, 1e-12)
		assert.Equal(t, want.Unit, got.Unit)
		assert.Equal(t, want.Name, got.Name)
	}
}

func TestParseDetailed(t *testing.T) {
	got, ok := ingredient.ParseDetailed("• 2 cups flour, sifted")
	require.True(t, ok)
	assert.Equal(t, ingredient.Ingredient{Quantity: qty(2), Unit: ingredient.UnitCup, Name: "flour", Comment: "sifted"}, got)

	got, ok = ingredient.ParseDetailed("1 1/2 cups milk")
	require.True(t, ok)
	require.NotNil(t, got.Quantity)
	assert.InDelta(t, 1.5, *got.Quantity, 1e-9)
	assert.Equal(t, ingredient.UnitCup, got.Unit)
	assert.Equal(t, "milk", got.Name)

	got, ok = ingredient.ParseDetailed("Salt and pepper, to taste")
	require.True(t, ok)
	assert.Nil(t, got.Quantity)
	assert.Equal(t, "Salt and pepper", got.Name)
	assert.Equal(t, "to taste", got.Comment)
}

func TestDisplay(t *testing.T) {
	ing := ingredient.Ingredient{Quantity: qty(1.5), Unit: ingredient.UnitCup, Name: "sugar", Comment: "packed"}
	assert.Equal(t, "1½ cup sugar, packed", ing.Display())

	back, ok := ingredient.ParseDetailed(ing.Display())
	require.True(t, ok)
	assert.InDelta(t, 1.5, *back.Quantity, 1e-9)
	assert.Equal(t, "packed", back.Comment)
}

func TestParseUnit(t *testing.T) {
	u, ok := ingredient.ParseUnit("Cloves")
	assert.True(t, ok)
	assert.Equal(t, ingredient.UnitClove, u)

	_, ok = ingredient.ParseUnit("handful")
	assert.False(t, ok)

	for _, unit := range ingredient.Units {
		assert.True(t, unit.Valid())
		parsed, ok := ingredient.ParseUnit(string(unit))
		assert.True(t, ok)
		assert.Equal(t, unit, parsed)
	}
}

func TestParseDetailed_SpacedGlyph(t *testing.T) {
	got, ok := ingredient.ParseDetailed("1 ½ cup sugar")
	require.True(t, ok)
	require.NotNil(t, got.Quantity)
	assert.InDelta(t, 1.5, *got.Quantity, 1e-9)
	assert.Equal(t, ingredient.UnitCup, got.Unit)
	assert.Equal(t, "sugar", got.Name)
}
