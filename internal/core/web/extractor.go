// Package web 從食譜網頁擷取結構化食譜：優先使用 JSON-LD，
// 其次為常見網站的選擇器，最後以段落啟發式判斷食材與步驟。
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/recipe"
	"recipe-importer/internal/pkg/common"
)

// Extractor 網頁食譜擷取器
type Extractor struct {
	fetcher      Fetcher
	cache        cache.Store
	maxBodyBytes int64
}

// Option 擷取器選項
type Option func(*Extractor)

// WithCache 以 URL 快取擷取結果
func WithCache(store cache.Store) Option {
	return func(e *Extractor) {
		e.cache = store
	}
}

// WithMaxBodyBytes 限制頁面大小，0 表示不限制
func WithMaxBodyBytes(n int64) Option {
	return func(e *Extractor) {
		e.maxBodyBytes = n
	}
}

// NewExtractor 建立擷取器
func NewExtractor(fetcher Fetcher, opts ...Option) *Extractor {
	e := &Extractor{fetcher: fetcher, cache: cache.Noop{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractRecipe 抓取網址並擷取食譜。
// 錯誤為 common.ErrInvalidURL、ErrNetwork、ErrParsingFailed 或 ErrNoRecipeFound。
func (e *Extractor) ExtractRecipe(ctx context.Context, rawURL string) (*recipe.Recipe, error) {
	pageURL, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	key := cache.Key("web", pageURL)
	if cached, err := e.cache.Get(ctx, key); err == nil {
		var r recipe.Recipe
		if err := common.ParseJSON(cached, &r); err == nil {
			common.LogDebug("recipe served from cache", zap.String("url", pageURL))
			return &r, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		common.LogWarn("recipe cache lookup failed", zap.Error(err))
	}

	resp, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, common.ErrNetwork.WithErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, common.ErrNetwork.WithErr(fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if e.maxBodyBytes > 0 && int64(len(resp.Body)) > e.maxBodyBytes {
		return nil, common.ErrParsingFailed.WithErr(fmt.Errorf("page exceeds %d bytes", e.maxBodyBytes))
	}
	body, err := decodeBody(resp.Body, resp.ContentType)
	if err != nil {
		return nil, common.ErrParsingFailed.WithErr(err)
	}

	r, err := e.ExtractFromHTML(body, pageURL)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(r); err == nil {
		if err := e.cache.Set(ctx, key, string(data)); err != nil {
			common.LogWarn("recipe cache store failed", zap.Error(err))
		}
	}
	return r, nil
}

// ExtractFromHTML 從已取得的 HTML 擷取食譜
func (e *Extractor) ExtractFromHTML(page, pageURL string) (*recipe.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, common.ErrParsingFailed.WithErr(err)
	}

	if obj := findJSONLDRecipe(doc); obj != nil {
		r := recipeFromJSONLD(obj)
		if len(r.IngredientLines) > 0 || len(r.Instructions) > 0 {
			if r.Title == "" {
				r.Title = pageTitle(doc)
			}
			return finish(r, pageURL), nil
		}
	}

	r := &recipe.Recipe{
		Title:       pageTitle(doc),
		Description: pageDescription(doc),
		Servings:    selectFirst(doc, servingSelectors),
		Timings:     []recipe.Timing{},
		Method:      recipe.MethodSelectors,
	}
	r.IngredientLines = selectLines(doc, ingredientSelectors)
	r.Instructions = selectLines(doc, instructionSelectors)

	if len(r.IngredientLines) == 0 || len(r.Instructions) == 0 {
		ingredients, instructions := classifyBlocks(contentBlocks(doc))
		if len(r.IngredientLines) == 0 {
			r.IngredientLines = ingredients
		}
		if len(r.Instructions) == 0 {
			r.Instructions = instructions
		}
		r.Method = recipe.MethodHeuristic
	}

	if len(r.IngredientLines) == 0 && len(r.Instructions) == 0 {
		return nil, common.ErrNoRecipeFound
	}
	return finish(r, pageURL), nil
}

// finish 拆解食材並補上來源
func finish(r *recipe.Recipe, pageURL string) *recipe.Recipe {
	r.SourceURL = pageURL
	r.Ingredients = make([]ingredient.Ingredient, 0, len(r.IngredientLines))
	for _, line := range r.IngredientLines {
		if ing, ok := ingredient.ParseDetailed(line); ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	if r.IngredientLines == nil {
		r.IngredientLines = []string{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}

	common.LogDebug("recipe extracted",
		zap.String("url", pageURL),
		zap.String("method", string(r.Method)),
		zap.Int("ingredients", len(r.Ingredients)),
		zap.Int("instructions", len(r.Instructions)),
	)
	return r
}

func validateURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", common.ErrInvalidURL.WithErr(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", common.ErrInvalidURL.WithErr(fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return "", common.ErrInvalidURL.WithErr(fmt.Errorf("missing host"))
	}
	return u.String(), nil
}
