package ingredient

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	errNotANumber   = errors.New("not a number")
	errZeroDivision = errors.New("zero denominator")
)

// FractionGlyphs 可辨識的 Unicode 分數字元與對應數值
var FractionGlyphs = map[rune]float64{
	'¼': 0.25, '½': 0.5, '¾': 0.75,
	'⅓': 1.0 / 3, '⅔': 2.0 / 3,
	'⅕': 0.2, '⅖': 0.4, '⅗': 0.6, '⅘': 0.8,
	'⅙': 1.0 / 6, '⅚': 5.0 / 6,
	'⅛': 0.125, '⅜': 0.375, '⅝': 0.625, '⅞': 0.875,
}

// displayFraction 可顯示的分數（¼ ⅓ ½ ⅔ ¾）
type displayFraction struct {
	glyph string
	value float64
}

var displayFractions = []displayFraction{
	{"¼", 0.25}, {"⅓", 1.0 / 3}, {"½", 0.5}, {"⅔", 2.0 / 3}, {"¾", 0.75},
}

var decimalPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]+$`)

// IsFractionGlyph 判斷字元是否為分數字元
func IsFractionGlyph(r rune) bool {
	_, ok := FractionGlyphs[r]
	return ok
}

// ParseFraction 解析 "1/2" 或十進位數字；分母為 0 視為失敗
func ParseFraction(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, "/") == 1 {
		parts := strings.SplitN(s, "/", 2)
		num, err := parseDecimal(parts[0])
		if err != nil {
			return 0, err
		}
		den, err := parseDecimal(parts[1])
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, errZeroDivision
		}
		return num / den, nil
	}
	return parseDecimal(s)
}

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return 0, fmt.Errorf("%q: %w", s, errNotANumber)
	}
	return strconv.ParseFloat(s, 64)
}

// ParseQuantity 在 ParseFraction 之外也接受分數字元（"½"、"1½"）
func ParseQuantity(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := ParseFraction(s); err == nil {
		return v, nil
	}

	runes := []rune(s)
	if len(runes) == 0 {
		return 0, errNotANumber
	}
	last := runes[len(runes)-1]
	frac, ok := FractionGlyphs[last]
	if !ok {
		return 0, fmt.Errorf("%q: %w", s, errNotANumber)
	}
	if len(runes) == 1 {
		return frac, nil
	}
	whole, err := parseDecimal(string(runes[:len(runes)-1]))
	if err != nil {
		return 0, err
	}
	return whole + frac, nil
}

// FormatQuantity 以可被 ParseFraction 讀回的形式輸出數量：
// 整數、常見真分數（"1/2"）或最短十進位表示
func FormatQuantity(q float64) string {
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', -1, 64)
	}
	if q > 0 && q < 1 {
		for _, den := range []float64{2, 3, 4, 8} {
			num := q * den
			if math.Abs(num-math.Round(num)) < 1e-9 {
				return fmt.Sprintf("%d/%d", int(math.Round(num)), int(den))
			}
		}
	}
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// DisplayQuantity 以分數字元輸出數量，例如 1.5 -> "1½"；無對應字元時回退為 FormatQuantity
func DisplayQuantity(q float64) string {
	whole := math.Floor(q)
	rest := q - whole
	if rest < 1e-9 {
		return strconv.FormatFloat(whole, 'f', -1, 64)
	}
	for _, f := range displayFractions {
		if math.Abs(rest-f.value) < 1e-6 {
			if whole == 0 {
				return f.glyph
			}
			return strconv.FormatFloat(whole, 'f', -1, 64) + f.glyph
		}
	}
	return FormatQuantity(q)
}
