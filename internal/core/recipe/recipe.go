package recipe

import (
	"strings"

	"recipe-importer/internal/core/ingredient"
)

// Method 食譜的擷取方式
type Method string

const (
	MethodJSONLD    Method = "json-ld"
	MethodSelectors Method = "selectors"
	MethodHeuristic Method = "heuristic"
	MethodText      Method = "text"
)

// Timing 一筆時間資訊；Text 保留原文，Minutes 為解析結果（無法解析時為 0）
type Timing struct {
	Label   string `json:"label,omitempty"`
	Text    string `json:"text"`
	Minutes int    `json:"minutes,omitempty"`
}

// Recipe 轉換後可交給儲存層的食譜
type Recipe struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	Servings        string                  `json:"servings,omitempty"`
	Timings         []Timing                `json:"timings"`
	Ingredients     []ingredient.Ingredient `json:"ingredients"`
	IngredientLines []string                `json:"ingredient_lines"`
	Instructions    []string                `json:"instructions"`
	Notes           []string                `json:"notes,omitempty"`
	SourceURL       string                  `json:"source_url,omitempty"`
	Method          Method                  `json:"method"`
}

// NewTiming 由文字建立 Timing，自動判斷標籤並解析分鐘數
func NewTiming(label, text string) Timing {
	t := Timing{Label: label, Text: strings.TrimSpace(text)}
	if t.Label == "" {
		t.Label = timingLabel(t.Text)
	}
	if d, ok := ParseDuration(t.Text); ok {
		t.Minutes = int(d.Minutes())
	}
	return t
}

var timingLabels = []struct {
	prefix string
	label  string
}{
	{"prep", "prep"}, {"preparation", "prep"},
	{"cook", "cook"}, {"bake", "cook"}, {"baking", "cook"},
	{"total", "total"}, {"ready in", "total"},
	{"rest", "rest"}, {"chill", "rest"},
}

func timingLabel(text string) string {
	l := strings.ToLower(text)
	for _, tl := range timingLabels {
		if strings.HasPrefix(l, tl.prefix) {
			return tl.label
		}
	}
	return ""
}

// ToRecipe 把草稿轉成食譜：食材以 ParseDetailed 拆解，時間解析為分鐘
func (d *Draft) ToRecipe() *Recipe {
	r := &Recipe{
		Title:           d.Title,
		Description:     strings.Join(d.Summary(), " "),
		Timings:         []Timing{},
		Ingredients:     []ingredient.Ingredient{},
		IngredientLines: d.Ingredients(),
		Instructions:    d.Instructions(),
		Notes:           d.Notes(),
		Method:          MethodText,
	}
	if servings := d.Servings(); len(servings) > 0 {
		r.Servings = servings[0]
	}
	for _, text := range d.Timings() {
		r.Timings = append(r.Timings, NewTiming("", text))
	}
	for _, line := range r.IngredientLines {
		if ing, ok := ingredient.ParseDetailed(line); ok {
			r.Ingredients = append(r.Ingredients, ing)
		}
	}
	return r
}

// DraftFromRecipe 把網頁擷取的食譜放回草稿，讓後處理規則一體適用
func DraftFromRecipe(r *Recipe) *Draft {
	d := NewDraft()
	d.Title = r.Title
	if r.Description != "" {
		d.Append(FieldSummary, r.Description)
	}
	if r.Servings != "" {
		d.Append(FieldServings, r.Servings)
	}
	for _, t := range r.Timings {
		d.Append(FieldTimings, t.Display())
	}

	lines := r.IngredientLines
	if len(lines) == 0 {
		for _, ing := range r.Ingredients {
			lines = append(lines, ing.Display())
		}
	}
	d.Set(FieldIngredients, lines)
	d.Set(FieldInstructions, r.Instructions)
	d.Set(FieldNotes, r.Notes)
	return d
}

// Display 可讀形式，例如 "Prep time: 15 minutes"；無法解析時回傳原文
func (t Timing) Display() string {
	if t.Minutes <= 0 {
		return t.Text
	}
	human := FormatMinutes(t.Minutes)
	if t.Label == "" {
		return human
	}
	return strings.ToUpper(t.Label[:1]) + t.Label[1:] + " time: " + human
}
