package web

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-importer/internal/core/classify"
)

// 常見食譜外掛與網站的容器選擇器，依序嘗試
var ingredientSelectors = []string{
	".wprm-recipe-ingredient",
	".tasty-recipes-ingredients li",
	".mv-create-ingredients li",
	"[itemprop='recipeIngredient']",
	"[itemprop='ingredients']",
	".mntl-structured-ingredients__list-item",
	".recipe-ingredients li",
	".ingredients-list li",
	".ingredient-list li",
	".ingredients li",
	"ul.ingredients li",
}

var instructionSelectors = []string{
	".wprm-recipe-instruction-text",
	".tasty-recipes-instructions li",
	".mv-create-instructions li",
	"[itemprop='recipeInstructions'] li",
	"[itemprop='recipeInstructions']",
	".recipe-instructions li",
	".recipe-directions li",
	".instructions li",
	".directions li",
	".method li",
	".steps li",
}

var servingSelectors = []string{
	".wprm-recipe-servings",
	"[itemprop='recipeYield']",
	".tasty-recipes-yield",
	".recipe-yield",
	".servings",
	".yield",
}

// noiseSelectors 啟發式擷取前移除的非內容元素
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"header", "footer", "nav", "aside",
	"form", "iframe", "svg", "button",
	".sidebar", ".menu", ".navigation", ".comments", ".comment", ".ads", ".advertisement",
}

const minBlockLength = 10

// selectLines 以第一個有結果的選擇器取出各行文字
func selectLines(doc *goquery.Document, selectors []string) []string {
	for _, sel := range selectors {
		var lines []string
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if t := cleanText(s.Text()); t != "" {
				lines = append(lines, t)
			}
		})
		if len(lines) > 0 {
			return lines
		}
	}
	return nil
}

func selectFirst(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := cleanText(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

// contentBlocks 移除雜訊元素後，取出段落、清單項目與末端 div 的文字。
// 會修改 doc，須在其他欄位擷取完之後呼叫。
func contentBlocks(doc *goquery.Document) []string {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	seen := make(map[string]bool)
	var blocks []string
	doc.Find("p, li, div").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "div" && s.Children().Length() > 0 {
			return
		}
		t := cleanText(s.Text())
		if len([]rune(t)) <= minBlockLength || seen[t] {
			return
		}
		seen[t] = true
		blocks = append(blocks, t)
	})
	return blocks
}

// classifyBlocks 把內容區塊分為食材或步驟候選；兩者皆不是的區塊捨棄
func classifyBlocks(blocks []string) (ingredients, instructions []string) {
	for _, b := range blocks {
		switch {
		case classify.HasStepNumber(b) && classify.LooksLikeInstruction(b):
			instructions = append(instructions, b)
		case classify.LooksLikeIngredient(b) && !classify.StartsWithCookingVerb(b):
			ingredients = append(ingredients, b)
		case classify.LooksLikeInstruction(b):
			instructions = append(instructions, b)
		}
	}
	return ingredients, instructions
}

// pageTitle 依序取 <h1>、og:title、<title>
func pageTitle(doc *goquery.Document) string {
	if t := cleanText(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return cleanText(t)
	}
	return cleanText(doc.Find("title").First().Text())
}

func pageDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if t, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(t) != "" {
			return cleanText(t)
		}
	}
	return ""
}
