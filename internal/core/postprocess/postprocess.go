// Package postprocess 正規化分類後的欄位文字。所有規則皆為冪等：
// 對已處理過的草稿再執行一次不會有任何變化。
package postprocess

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/recipe"
)

var titlePrefixes = []string{"recipe for", "how to make", "recipe:", "make:"}

var (
	bulletMarker  = regexp.MustCompile(`^[•·*▪◦‣►▸○●■□✓✔\-–—]+\s*`)
	numericMarker = regexp.MustCompile(`^\d+(?:\.\s+|\)\s*)`)
	stepMarker    = regexp.MustCompile(`(?i)^step\s*\d+\s*[:.)\-]?\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	unitAbbrev    = regexp.MustCompile(`(?i)([\d¼½¾⅓⅔⅛⅜⅝⅞])\s*(tbsps|tbsp|tsps|tsp|oz|lbs|lb|kg|g|ml|l|c|pt|qt|gal)\b\.?`)
	attachedUnit  = regexp.MustCompile(`(?i)(\d)(tbsps|tbsp|tsps|tsp|oz|lbs|lb|kg|g|ml|l|pt|qt|gal)\b\.?`)
	timeAbbrev    = regexp.MustCompile(`\b(mins|min|hrs|hr|secs|sec)\b\.?`)
	timeQuantity  = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s+(minute|hour|second|day|week)\b`)
	firstNumber   = regexp.MustCompile(`\d+(?:\s*-\s*\d+)?`)
)

var unitWords = map[string]string{
	"tbsp": "tablespoon", "tbsps": "tablespoons",
	"tsp": "teaspoon", "tsps": "teaspoons",
	"oz": "ounce", "lb": "pound", "lbs": "pounds",
	"g": "gram", "kg": "kilogram", "ml": "milliliter", "l": "liter", "c": "cup",
	"pt": "pint", "qt": "quart", "gal": "gallon",
}

var timeWords = map[string]string{
	"min": "minute", "mins": "minutes",
	"hr": "hour", "hrs": "hours",
	"sec": "second", "secs": "seconds",
}

var servingVerbs = []string{"serves", "yields", "yield", "makes"}

// Process 回傳正規化後的新草稿，不修改輸入
func Process(d *recipe.Draft) *recipe.Draft {
	out := d.Clone()
	out.Title = Title(d.Title)

	apply := map[recipe.Field]func(string) string{
		recipe.FieldSummary:      Summary,
		recipe.FieldServings:     Serving,
		recipe.FieldTimings:      Time,
		recipe.FieldIngredients:  Ingredient,
		recipe.FieldInstructions: Instruction,
		recipe.FieldNotes:        Summary,
	}
	for _, f := range recipe.Fields {
		fn := apply[f]
		vals := d.Get(f)
		normalized := make([]string, 0, len(vals))
		for _, v := range vals {
			if s := fn(v); s != "" {
				normalized = append(normalized, s)
			}
		}
		out.Set(f, normalized)
	}
	return out
}

// Title 去除 "Recipe for" 等前綴與結尾冒號句點；全大寫轉為標題大小寫，否則首字大寫
func Title(s string) string {
	s = strings.TrimSpace(s)
	for stripped := true; stripped; {
		stripped = false
		for _, p := range titlePrefixes {
			if hasPrefixWord(s, p) {
				s = strings.TrimSpace(s[len(p):])
				stripped = true
				break
			}
		}
	}
	s = strings.TrimSpace(strings.TrimRight(s, ":."))
	if s == "" {
		return s
	}
	if isUpperCase(s) {
		return cases.Title(language.English).String(s)
	}
	return capitalizeFirst(s)
}

// hasPrefixWord 不分大小寫比對前綴，前綴之後須為結尾、空白或冒號
func hasPrefixWord(s, prefix string) bool {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return false
	}
	if len(s) == len(prefix) || strings.HasSuffix(prefix, ":") {
		return true
	}
	next := s[len(prefix)]
	return next == ':' || next == ' ' || next == '\t'
}

// Ingredient 去除項目符號與編號、展開單位縮寫、分數字元前後補空白
func Ingredient(s string) string {
	s = stripMarkers(strings.TrimSpace(s), bulletMarker, numericMarker)
	s = attachedUnit.ReplaceAllStringFunc(s, func(m string) string {
		sub := attachedUnit.FindStringSubmatch(m)
		return sub[1] + " " + unitWords[strings.ToLower(sub[2])]
	})
	s = unitAbbrev.ReplaceAllStringFunc(s, func(m string) string {
		sub := unitAbbrev.FindStringSubmatch(m)
		return sub[1] + " " + unitWords[strings.ToLower(sub[2])]
	})
	return spaceFractions(s)
}

// Instruction 去除 "Step N:" 與編號，補上結尾標點並將首字大寫
func Instruction(s string) string {
	s = stripMarkers(strings.TrimSpace(s), stepMarker, bulletMarker, numericMarker)
	if s == "" {
		return s
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "!") && !strings.HasSuffix(s, "?") {
		s += "."
	}
	return capitalizeFirst(s)
}

// Summary 去除前後空白並合併連續空白
func Summary(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Time 小寫後展開縮寫、補上複數，最後轉為標題大小寫
func Time(s string) string {
	s = Summary(strings.ToLower(s))
	if s == "" {
		return s
	}
	s = timeAbbrev.ReplaceAllStringFunc(s, func(m string) string {
		return timeWords[strings.TrimSuffix(m, ".")]
	})
	s = timeQuantity.ReplaceAllStringFunc(s, func(m string) string {
		sub := timeQuantity.FindStringSubmatch(m)
		if sub[1] == "1" {
			return m
		}
		return sub[1] + " " + sub[2] + "s"
	})
	return cases.Title(language.English).String(s)
}

// Serving 統一為 "Serves 4"、"Makes 24 cookies" 等形式
func Serving(s string) string {
	s = Summary(strings.ToLower(s))
	if s == "" {
		return s
	}
	for _, verb := range servingVerbs {
		if strings.HasPrefix(s, verb) {
			return strings.ToUpper(verb[:1]) + s[1:]
		}
	}
	if n := firstNumber.FindString(s); n != "" {
		return "Serves " + whitespaceRun.ReplaceAllString(n, "")
	}
	return s
}

func stripMarkers(s string, patterns ...*regexp.Regexp) string {
	for {
		before := s
		for _, p := range patterns {
			s = strings.TrimSpace(p.ReplaceAllString(s, ""))
		}
		if s == before {
			return s
		}
	}
}

// spaceFractions 在數字與分數字元之間、分數字元與字母之間補空白
func spaceFractions(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 {
			prev := runes[i-1]
			if ingredient.IsFractionGlyph(r) && unicode.IsDigit(prev) {
				b.WriteRune(' ')
			} else if unicode.IsLetter(r) && ingredient.IsFractionGlyph(prev) {
				b.WriteRune(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isUpperCase(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func capitalizeFirst(s string) string {
	for i, r := range s {
		if unicode.IsLetter(r) {
			if unicode.IsLower(r) {
				return s[:i] + string(unicode.ToUpper(r)) + s[i+len(string(r)):]
			}
			return s
		}
		if !unicode.IsSpace(r) {
			return s
		}
	}
	return s
}
