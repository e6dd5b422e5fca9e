package web

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"recipe-importer/internal/core/recipe"
)

var stripTags = bluemonday.StrictPolicy()

// cleanText 去除標籤、還原實體並合併空白
func cleanText(s string) string {
	s = html.UnescapeString(stripTags.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// findJSONLDRecipe 掃描所有 ld+json 區塊，回傳第一個 @type 為 Recipe 的物件
func findJSONLDRecipe(doc *goquery.Document) map[string]interface{} {
	var found map[string]interface{}
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &data); err != nil {
			return true
		}
		found = searchRecipe(data, 0)
		return found == nil
	})
	return found
}

func searchRecipe(node interface{}, depth int) map[string]interface{} {
	if depth > 8 {
		return nil
	}
	switch v := node.(type) {
	case []interface{}:
		for _, item := range v {
			if r := searchRecipe(item, depth+1); r != nil {
				return r
			}
		}
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		for _, key := range []string{"@graph", "mainEntity", "mainEntityOfPage"} {
			if child, ok := v[key]; ok {
				if r := searchRecipe(child, depth+1); r != nil {
					return r
				}
			}
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe" || strings.HasSuffix(v, "/Recipe") || strings.HasSuffix(v, ":Recipe")
	case []interface{}:
		for _, item := range v {
			if isRecipeType(item) {
				return true
			}
		}
	}
	return false
}

// recipeFromJSONLD 讀取 schema.org Recipe 欄位；時間字串原樣保存
func recipeFromJSONLD(obj map[string]interface{}) *recipe.Recipe {
	r := &recipe.Recipe{
		Title:       cleanText(stringValue(obj["name"])),
		Description: cleanText(stringValue(obj["description"])),
		Servings:    cleanText(yieldValue(obj["recipeYield"])),
		Timings:     []recipe.Timing{},
		Method:      recipe.MethodJSONLD,
	}

	ingredients := obj["recipeIngredient"]
	if ingredients == nil {
		ingredients = obj["ingredients"]
	}
	for _, s := range stringList(ingredients) {
		if t := cleanText(s); t != "" {
			r.IngredientLines = append(r.IngredientLines, t)
		}
	}
	r.Instructions = flattenInstructions(obj["recipeInstructions"])

	for _, tf := range []struct{ key, label string }{
		{"prepTime", "prep"}, {"cookTime", "cook"}, {"totalTime", "total"},
	} {
		if s := strings.TrimSpace(stringValue(obj[tf.key])); s != "" {
			r.Timings = append(r.Timings, recipe.NewTiming(tf.label, s))
		}
	}
	return r
}

// flattenInstructions 攤平字串、HowToStep、HowToSection 與巢狀陣列
func flattenInstructions(node interface{}) []string {
	var out []string
	var walk func(n interface{})
	walk = func(n interface{}) {
		switch v := n.(type) {
		case string:
			for _, line := range strings.Split(v, "\n") {
				if t := cleanText(line); t != "" {
					out = append(out, t)
				}
			}
		case []interface{}:
			for _, item := range v {
				walk(item)
			}
		case map[string]interface{}:
			if items, ok := v["itemListElement"]; ok {
				walk(items)
				return
			}
			text := stringValue(v["text"])
			if text == "" {
				text = stringValue(v["name"])
			}
			if t := cleanText(text); t != "" {
				out = append(out, t)
			}
		}
	}
	walk(node)
	return out
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	case []interface{}:
		if len(t) > 0 {
			return stringValue(t[0])
		}
	case map[string]interface{}:
		if s, ok := t["@value"]; ok {
			return stringValue(s)
		}
	}
	return ""
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// yieldValue 多個 recipeYield 時優先取含文字的那個（"4 servings" 優於 "4"）
func yieldValue(v interface{}) string {
	list := stringList(v)
	if f, ok := v.(float64); ok {
		list = []string{fmt.Sprintf("%g", f)}
	}
	for _, s := range list {
		if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			return s
		}
	}
	if len(list) > 0 {
		return list[0]
	}
	return ""
}
