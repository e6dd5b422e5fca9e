package classify

import "strings"

// Label 行標籤（封閉列舉）
type Label string

const (
	LabelTitle       Label = "title"
	LabelIngredient  Label = "ingredient"
	LabelInstruction Label = "instruction"
	LabelSummary     Label = "summary"
	LabelTime        Label = "time"
	LabelServing     Label = "serving"
	LabelUnknown     Label = "unknown"
)

// Labels 所有標籤
var Labels = []Label{
	LabelTitle, LabelIngredient, LabelInstruction, LabelSummary, LabelTime, LabelServing, LabelUnknown,
}

// ParseLabel 解析標籤名稱，無法辨識時回傳 LabelUnknown 與 false
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Labels {
		if l == known {
			return l, true
		}
	}
	return LabelUnknown, false
}

// ClassifiedLine 分類後的一行
type ClassifiedLine struct {
	Text       string  `json:"text"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}
