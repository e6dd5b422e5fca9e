package classify

import (
	"regexp"
	"strings"
	"unicode"
)

const maxIngredientLength = 200

var (
	stepNumberPattern       = regexp.MustCompile(`(?i)^\s*(?:step\s*\d+\s*[:.)-]?|\d+\s*[.)]\s+)`)
	quantityUnitPattern     = regexp.MustCompile(`(?i)^[\s•·*\-–]*(?:\d+(?:[.,/]\d+)?|\d*\s*[¼½¾⅓⅔⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞])(?:\s*(?:-|to)\s*\d+(?:[./]\d+)?)?\s*(?:cups?|c|tbsps?\.?|tablespoons?|tbs|tsps?\.?|teaspoons?|oz\.?|ounces?|lbs?\.?|pounds?|g|grams?|kg|kilograms?|ml|milliliters?|millilitres?|l|liters?|litres?|pints?|quarts?|gallons?|cans?|cloves?|pinch(?:es)?|bunch(?:es)?|pieces?|jars?|bottles?|containers?|sticks?|slices?|packages?|large|medium|small|whole)\b`)
	leadingQuantityPattern  = regexp.MustCompile(`^[\s•·*\-–]*(?:\d+(?:[.,/]\d+)?|\d*[¼½¾⅓⅔⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞])\s+\p{L}`)
	commonIngredientPattern = regexp.MustCompile(`(?i)\b(?:flour|sugar|salt|pepper|butter|oil|eggs?|milk|water|garlic|onions?|cream|cheese|vanilla|baking\s+(?:soda|powder)|yeast|honey|chicken|beef|pork|rice|pasta|tomato(?:es)?|lemons?|limes?|cinnamon|parsley|basil|broth|stock)\b`)
	cookingVerbPattern      = regexp.MustCompile(`(?i)\b(?:preheat|heat|mix|stir|whisk|combine|add|bake|cook|boil|simmer|fry|saute|roast|grill|broil|chop|dice|slice|mince|pour|fold|beat|knead|blend|season|serve|place|remove|transfer|cover|drain|melt|spread|sprinkle|toss|bring|reduce|cool|chill|refrigerate|marinate|garnish|cut|peel|rinse|let|set aside|line|grease|spoon|roll|shape|divide|arrange|top|brush)\b`)
	leadingVerbPattern      = regexp.MustCompile(`(?i)^(?:preheat|heat|mix|stir|whisk|combine|add|bake|cook|boil|simmer|fry|saute|roast|grill|broil|chop|dice|slice|mince|pour|fold|beat|knead|blend|season|serve|place|remove|transfer|cover|drain|melt|spread|sprinkle|toss|bring|reduce|cool|chill|refrigerate|marinate|garnish|cut|peel|rinse|let|line|grease|spoon|roll|shape|divide|arrange|brush|in a|using|once|when|meanwhile)\b`)
	timePattern             = regexp.MustCompile(`(?i)^(?:prep(?:aration)?|cook(?:ing)?|total|bake|baking|active|inactive|rest(?:ing)?|chill(?:ing)?|ready\s+in)(?:\s+time)?\s*[:\-]?\s*(?:about\s+)?\d+\s*(?:h|hrs?|hours?|m|mins?|minutes?)\b`)
	bareTimePattern         = regexp.MustCompile(`(?i)^\d+\s*(?:h|hrs?|hours?|m|mins?|minutes?)\b(?:\s*(?:and\s*)?\d+\s*(?:m|mins?|minutes?))?\.?$`)
	servingPattern          = regexp.MustCompile(`(?i)^(?:serves|serving|servings|yield|yields|makes)\b|^\d+\s*(?:-\s*\d+\s*)?servings?\b`)
)

// bulletRunes 項目符號
const bulletRunes = "•·*▪◦‣►▸○●-–—"

// sectionHeaders 段落標題（小寫）
var sectionHeaders = []string{
	"ingredients", "instructions", "directions", "method", "preparation", "steps",
	"notes", "tips", "prep time", "cook time", "total time", "nutrition",
	"for the", "equipment", "serving suggestions",
}

// LooksLikeIngredient 是否像一行食材：數量加單位、常見食材字詞或項目符號開頭，且不過長
func LooksLikeIngredient(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || len([]rune(t)) >= maxIngredientLength {
		return false
	}
	if quantityUnitPattern.MatchString(t) || commonIngredientPattern.MatchString(t) {
		return true
	}
	return strings.ContainsRune(bulletRunes, []rune(t)[0])
}

// LooksLikeInstruction 是否像一個步驟：步驟編號或含烹飪動詞，且長度超過 20
func LooksLikeInstruction(text string) bool {
	t := strings.TrimSpace(text)
	if len([]rune(t)) <= 20 {
		return false
	}
	return HasStepNumber(t) || cookingVerbPattern.MatchString(t)
}

// HasStepNumber 是否以 "1." "2)" "Step 3" 等步驟編號開頭
func HasStepNumber(text string) bool {
	return stepNumberPattern.MatchString(text)
}

// StartsWithCookingVerb 是否以烹飪動詞開頭（忽略項目符號）
func StartsWithCookingVerb(text string) bool {
	return leadingVerbPattern.MatchString(strings.TrimLeft(strings.TrimSpace(text), bulletRunes+" "))
}

// SectionHeader 判斷是否為段落標題（"Ingredients:"、"For the sauce"），回傳正規化的標題名
func SectionHeader(text string) (string, bool) {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.TrimRight(t, ":.- ")
	if t == "" || len(strings.Fields(t)) > 4 {
		return "", false
	}
	for _, h := range sectionHeaders {
		if t == h || strings.HasPrefix(t, h+" ") || strings.HasPrefix(t, h+":") {
			return h, true
		}
	}
	return "", false
}

// IsAllCaps 至少含一個字母且沒有小寫
func IsAllCaps(text string) bool {
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// CapitalizedRatio 以大寫字母開頭的單字比例
func CapitalizedRatio(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	n := 0
	for _, w := range words {
		for _, r := range w {
			if unicode.IsLetter(r) {
				if unicode.IsUpper(r) {
					n++
				}
				break
			}
		}
	}
	return float64(n) / float64(len(words))
}
