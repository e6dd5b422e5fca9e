package web_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/recipe"
	"recipe-importer/internal/core/web"
	"recipe-importer/internal/pkg/common"
	"recipe-importer/mocks"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func htmlResponse(body string) *web.Response {
	return &web.Response{StatusCode: http.StatusOK, Body: []byte(body), ContentType: "text/html; charset=utf-8"}
}

func TestExtractFromHTML_PrefersJSONLD(t *testing.T) {
	e := web.NewExtractor(nil)

	r, err := e.ExtractFromHTML(fixture(t, "jsonld_graph.html"), "https://example.com/banana-bread")
	require.NoError(t, err)

	assert.Equal(t, recipe.MethodJSONLD, r.Method)
	assert.Equal(t, "Best Banana Bread", r.Title)
	assert.Equal(t, "Moist & easy banana bread.", r.Description)
	assert.Equal(t, "8 slices", r.Servings)
	assert.Equal(t, []string{"3 ripe bananas", "1 1/2 cups flour", "1/2 cup sugar, divided"}, r.IngredientLines)
	assert.Equal(t, []string{
		"Preheat the oven to 350F.",
		"Mash the bananas.",
		"Fold in the flour.",
		"Bake for 1 hour.",
	}, r.Instructions)
	assert.Equal(t, "https://example.com/banana-bread", r.SourceURL)

	require.Len(t, r.Timings, 3)
	assert.Equal(t, recipe.Timing{Label: "prep", Text: "PT15M", Minutes: 15}, r.Timings[0])
	assert.Equal(t, "PT1H", r.Timings[1].Text)
	assert.Equal(t, 75, r.Timings[2].Minutes)

	require.Len(t, r.Ingredients, 3)
	require.NotNil(t, r.Ingredients[1].Quantity)
	assert.InDelta(t, 1.5, *r.Ingredients[1].Quantity, 1e-9)
	assert.Equal(t, ingredient.UnitCup, r.Ingredients[1].Unit)
	assert.Equal(t, "divided", r.Ingredients[2].Comment)
}

func TestExtractFromHTML_ScalarInstructions(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
	[{"@type":"Organization"},{"@type":"http://schema.org/Recipe","name":"Toast",
	  "recipeIngredient":"1 slice bread","recipeInstructions":"Toast the bread.\nButter it."}]
	</script></head><body></body></html>`

	r, err := web.NewExtractor(nil).ExtractFromHTML(page, "https://example.com/toast")
	require.NoError(t, err)
	assert.Equal(t, []string{"1 slice bread"}, r.IngredientLines)
	assert.Equal(t, []string{"Toast the bread.", "Butter it."}, r.Instructions)
}

func TestExtractFromHTML_Selectors(t *testing.T) {
	r, err := web.NewExtractor(nil).ExtractFromHTML(fixture(t, "selectors.html"), "https://example.com/soup")
	require.NoError(t, err)

	assert.Equal(t, recipe.MethodSelectors, r.Method)
	assert.Equal(t, "Tomato Soup", r.Title)
	assert.Equal(t, "A silky tomato soup.", r.Description)
	assert.Equal(t, "Serves 4", r.Servings)
	assert.Equal(t, []string{"2 tbsp olive oil", "1 onion, chopped", "800 g canned tomatoes"}, r.IngredientLines)
	assert.Len(t, r.Instructions, 3)
	assert.Equal(t, "chopped", r.Ingredients[1].Comment)
	assert.Equal(t, ingredient.UnitGram, r.Ingredients[2].Unit)
}

func TestExtractFromHTML_Heuristics(t *testing.T) {
	r, err := web.NewExtractor(nil).ExtractFromHTML(fixture(t, "heuristic.html"), "https://example.com/pancakes")
	require.NoError(t, err)

	assert.Equal(t, recipe.MethodHeuristic, r.Method)
	assert.Equal(t, "Weeknight Pancakes", r.Title)
	assert.Equal(t, []string{"2 cups all-purpose flour", "1 1/2 cups milk, warmed", "2 large eggs"}, r.IngredientLines)
	assert.Equal(t, []string{
		"1. Whisk the flour and milk together in a bowl.",
		"2. Beat in the eggs until smooth.",
		"Cook the batter on a hot griddle until golden on both sides.",
	}, r.Instructions)
	assert.Equal(t, "warmed", r.Ingredients[1].Comment)
}

func TestExtractFromHTML_NoRecipe(t *testing.T) {
	_, err := web.NewExtractor(nil).ExtractFromHTML(fixture(t, "no_recipe.html"), "https://example.com/about")
	assert.ErrorIs(t, err, common.ErrNoRecipeFound)
}

func TestExtractRecipe_Errors(t *testing.T) {
	ctx := context.Background()

	fetcher := new(mocks.MockFetcher)
	e := web.NewExtractor(fetcher)

	for _, bad := range []string{"not a url", "ftp://example.com/x", "https:///nohost", "::"} {
		_, err := e.ExtractRecipe(ctx, bad)
		assert.ErrorIs(t, err, common.ErrInvalidURL, bad)
	}

	fetcher.On("Fetch", mock.Anything, "https://example.com/missing").
		Return(&web.Response{StatusCode: http.StatusNotFound}, nil)
	_, err := e.ExtractRecipe(ctx, "https://example.com/missing")
	assert.ErrorIs(t, err, common.ErrNetwork)

	fetcher.On("Fetch", mock.Anything, "https://example.com/down").
		Return(nil, errors.New("connection refused"))
	_, err = e.ExtractRecipe(ctx, "https://example.com/down")
	assert.ErrorIs(t, err, common.ErrNetwork)

	fetcher.On("Fetch", mock.Anything, "https://example.com/about").
		Return(htmlResponse(fixture(t, "no_recipe.html")), nil)
	_, err = e.ExtractRecipe(ctx, "https://example.com/about")
	assert.ErrorIs(t, err, common.ErrNoRecipeFound)

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, "not a url")
}

func TestExtractRecipe_BodyLimit(t *testing.T) {
	fetcher := new(mocks.MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://example.com/big").
		Return(htmlResponse(fixture(t, "selectors.html")), nil)

	_, err := web.NewExtractor(fetcher, web.WithMaxBodyBytes(100)).ExtractRecipe(context.Background(), "https://example.com/big")
	assert.ErrorIs(t, err, common.ErrParsingFailed)
}

func TestExtractRecipe_UsesCache(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemory(cache.MemoryOptions{MaxSize: 10, TTL: time.Minute})
	defer store.Close()

	fetcher := new(mocks.MockFetcher)
	fetcher.On("Fetch", mock.Anything, "https://example.com/soup").
		Return(htmlResponse(fixture(t, "selectors.html")), nil).Once()

	e := web.NewExtractor(fetcher, web.WithCache(store))
	first, err := e.ExtractRecipe(ctx, "https://example.com/soup")
	require.NoError(t, err)
	second, err := e.ExtractRecipe(ctx, "https://example.com/soup")
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.IngredientLines, second.IngredientLines)
	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestRestyFetcher_DecodesCharset(t *testing.T) {
	// "Crème brûlée" 以 ISO-8859-1 編碼
	latin1 := []byte("<html><head><title>Cr\xe8me br\xfbl\xe9e</title></head><body>" +
		`<ul class="ingredients"><li>2 cups cream</li></ul><ol class="instructions"><li>Bake gently.</li></ol></body></html>`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		_, _ = w.Write(latin1)
	}))
	defer srv.Close()

	fetcher := web.NewRestyFetcher(web.FetcherOptions{Timeout: 5 * time.Second, UserAgent: "test-agent"})
	r, err := web.NewExtractor(fetcher).ExtractRecipe(context.Background(), srv.URL+"/creme")
	require.NoError(t, err)

	assert.Equal(t, "Crème brûlée", r.Title)
	assert.Equal(t, []string{"2 cups cream"}, r.IngredientLines)
	assert.Equal(t, []string{"Bake gently."}, r.Instructions)
}
