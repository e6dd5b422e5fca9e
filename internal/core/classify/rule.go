package classify

import (
	"context"
	"strings"
)

// RuleModel 以固定規則判斷標籤的模型，不需外部服務
type RuleModel struct{}

// NewRuleModel 建立規則模型
func NewRuleModel() *RuleModel {
	return &RuleModel{}
}

// Classify 實作 Model，規則依序比對，先符合者勝出
func (m *RuleModel) Classify(_ context.Context, text string) (Label, float64, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return LabelUnknown, 0, nil
	}
	words := len(strings.Fields(t))

	switch {
	case servingPattern.MatchString(t):
		return LabelServing, 0.9, nil
	case timePattern.MatchString(t), bareTimePattern.MatchString(t):
		return LabelTime, 0.85, nil
	}
	if _, ok := SectionHeader(t); ok {
		return LabelUnknown, 0.5, nil
	}

	switch {
	case HasStepNumber(t):
		return LabelInstruction, 0.9, nil
	case quantityUnitPattern.MatchString(t):
		return LabelIngredient, 0.9, nil
	case leadingQuantityPattern.MatchString(t) && words <= 8 && !cookingVerbPattern.MatchString(t):
		return LabelIngredient, 0.8, nil
	case StartsWithCookingVerb(t):
		return LabelInstruction, 0.85, nil
	case looksLikeTitle(t, words):
		return LabelTitle, 0.75, nil
	case words <= 8 && LooksLikeIngredient(t):
		return LabelIngredient, 0.7, nil
	case LooksLikeInstruction(t) && endsWithPunctuation(t):
		return LabelInstruction, 0.7, nil
	case words >= 8:
		return LabelSummary, 0.68, nil
	}
	return LabelUnknown, 0.3, nil
}

func looksLikeTitle(t string, words int) bool {
	if words < 1 || words > 10 || endsWithPunctuation(t) {
		return false
	}
	first := []rune(t)[0]
	if first >= '0' && first <= '9' {
		return false
	}
	return IsAllCaps(t) || CapitalizedRatio(t) > 0.6
}

func endsWithPunctuation(t string) bool {
	return strings.HasSuffix(t, ".") || strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?")
}
