// Package ingredient 將單行食材文字拆解為數量、單位、名稱與備註，並提供反向輸出。
// 解析失敗不會回傳錯誤：無法拆解的字串整段當作名稱。
package ingredient

import (
	"regexp"
	"strings"
)

// Ingredient 結構化食材
type Ingredient struct {
	Quantity *float64 `json:"quantity,omitempty"`
	Unit     Unit     `json:"unit,omitempty"`
	Name     string   `json:"name"`
	Comment  string   `json:"comment,omitempty"`
}

var leadingMarker = regexp.MustCompile(`^(?:[-–—•·*▪◦‣►○●]+\s*)+`)

// Parse 依空白切分後的 token 數量決定語法：
//
//	1 個：整段為名稱
//	2 個：token[0] 是數量則為 數量+名稱，否則整段為名稱
//	3 個以上：token[0] 是數量且 token[1] 是已知單位則為 數量+單位+名稱，
//	          只有數量則為 數量+名稱，否則整段為名稱
//
// 空字串回傳 false。
func Parse(input string) (Ingredient, bool) {
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		return Ingredient{}, false
	}
	whole := strings.Join(tokens, " ")

	if len(tokens) == 1 {
		return Ingredient{Name: whole}, true
	}

	qty, err := ParseQuantity(tokens[0])
	if err != nil {
		return Ingredient{Name: whole}, true
	}
	if len(tokens) == 2 {
		return Ingredient{Quantity: &qty, Name: tokens[1]}, true
	}

	if unit, ok := ParseUnit(tokens[1]); ok {
		return Ingredient{Quantity: &qty, Unit: unit, Name: strings.Join(tokens[2:], " ")}, true
	}
	return Ingredient{Quantity: &qty, Name: strings.Join(tokens[1:], " ")}, true
}

// ParseDetailed 是 Parse 的擴充：去除項目符號、切出結尾的逗號備註，
// 並合併帶分數（"1 1/2 cups"、"1 ½ cups"）
func ParseDetailed(input string) (Ingredient, bool) {
	s := strings.TrimSpace(leadingMarker.ReplaceAllString(strings.TrimSpace(input), ""))
	if s == "" {
		return Ingredient{}, false
	}

	comment := ""
	if idx := strings.Index(s, ","); idx > 0 {
		comment = strings.TrimSpace(s[idx+1:])
		s = strings.TrimSpace(s[:idx])
	}

	tokens := strings.Fields(s)
	if len(tokens) >= 3 {
		if whole, err := parseDecimal(tokens[0]); err == nil && isFractionToken(tokens[1]) {
			if frac, err := ParseQuantity(tokens[1]); err == nil {
				merged := FormatQuantity(whole + frac)
				tokens = append([]string{merged}, tokens[2:]...)
			}
		}
	}

	ing, ok := Parse(strings.Join(tokens, " "))
	if !ok {
		// 只有備註沒有主體時，把原字串當名稱
		return Ingredient{Name: strings.TrimSpace(input)}, true
	}
	ing.Comment = comment
	return ing, true
}

// String 輸出 "<數量> <單位> <名稱>"，缺少的部分連同分隔空白一併省略
func (i Ingredient) String() string {
	return i.render(FormatQuantity)
}

// Display 與 String 相同，但數量以分數字元呈現（"1½ cup sugar"），備註附在逗號後
func (i Ingredient) Display() string {
	s := i.render(DisplayQuantity)
	if i.Comment != "" {
		s += ", " + i.Comment
	}
	return s
}

func (i Ingredient) render(format func(float64) string) string {
	parts := make([]string, 0, 3)
	if i.Quantity != nil {
		parts = append(parts, format(*i.Quantity))
	}
	if i.Unit != UnitNone {
		parts = append(parts, string(i.Unit))
	}
	if i.Name != "" {
		parts = append(parts, i.Name)
	}
	return strings.Join(parts, " ")
}

// isFractionToken 是否為 "1/2" 或單一分數字元
func isFractionToken(tok string) bool {
	if strings.Contains(tok, "/") {
		return true
	}
	r := []rune(tok)
	return len(r) == 1 && IsFractionGlyph(r[0])
}
