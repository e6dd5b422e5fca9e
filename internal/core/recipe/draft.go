// Package recipe 定義匯入流程的暫存草稿與最終食譜，以及兩者之間的轉換。
package recipe

import (
	"encoding/json"

	"recipe-importer/internal/core/classify"
)

// Field 草稿中的多值欄位
type Field string

const (
	FieldSummary      Field = "summary"
	FieldServings     Field = "servings"
	FieldTimings      Field = "timings"
	FieldIngredients  Field = "ingredients"
	FieldInstructions Field = "instructions"
	FieldNotes        Field = "notes"
)

// Fields 所有欄位，依輸出順序
var Fields = []Field{
	FieldSummary, FieldServings, FieldTimings, FieldIngredients, FieldInstructions, FieldNotes,
}

// FieldForLabel 行標籤對應的欄位；title 與 unknown 沒有對應欄位
func FieldForLabel(l classify.Label) (Field, bool) {
	switch l {
	case classify.LabelSummary:
		return FieldSummary, true
	case classify.LabelServing:
		return FieldServings, true
	case classify.LabelTime:
		return FieldTimings, true
	case classify.LabelIngredient:
		return FieldIngredients, true
	case classify.LabelInstruction:
		return FieldInstructions, true
	}
	return "", false
}

// Draft 單次匯入的暫存結果，各階段回傳新的值而不修改前一階段的草稿
type Draft struct {
	Title           string
	RawText         []string
	ClassifiedLines []classify.ClassifiedLine
	SkippedLines    []classify.ClassifiedLine

	fields map[Field][]string
}

// NewDraft 建立空草稿
func NewDraft() *Draft {
	return &Draft{fields: make(map[Field][]string)}
}

// Get 取得欄位內容的副本
func (d *Draft) Get(f Field) []string {
	vals := d.fields[f]
	if len(vals) == 0 {
		return []string{}
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Set 取代欄位內容
func (d *Draft) Set(f Field, vals []string) {
	if d.fields == nil {
		d.fields = make(map[Field][]string)
	}
	d.fields[f] = append([]string(nil), vals...)
}

// Append 附加到欄位
func (d *Draft) Append(f Field, vals ...string) {
	if d.fields == nil {
		d.fields = make(map[Field][]string)
	}
	d.fields[f] = append(d.fields[f], vals...)
}

func (d *Draft) Summary() []string      { return d.Get(FieldSummary) }
func (d *Draft) Servings() []string     { return d.Get(FieldServings) }
func (d *Draft) Timings() []string      { return d.Get(FieldTimings) }
func (d *Draft) Ingredients() []string  { return d.Get(FieldIngredients) }
func (d *Draft) Instructions() []string { return d.Get(FieldInstructions) }
func (d *Draft) Notes() []string        { return d.Get(FieldNotes) }

// IsEmpty 沒有任何食材與步驟
func (d *Draft) IsEmpty() bool {
	return len(d.fields[FieldIngredients]) == 0 && len(d.fields[FieldInstructions]) == 0
}

// Clone 深拷貝
func (d *Draft) Clone() *Draft {
	c := NewDraft()
	c.Title = d.Title
	c.RawText = append([]string(nil), d.RawText...)
	c.ClassifiedLines = append([]classify.ClassifiedLine(nil), d.ClassifiedLines...)
	c.SkippedLines = append([]classify.ClassifiedLine(nil), d.SkippedLines...)
	for f, vals := range d.fields {
		c.fields[f] = append([]string(nil), vals...)
	}
	return c
}

type draftJSON struct {
	Title           string                    `json:"title"`
	Summary         []string                  `json:"summary"`
	Servings        []string                  `json:"servings"`
	Timings         []string                  `json:"timings"`
	Ingredients     []string                  `json:"ingredients"`
	Instructions    []string                  `json:"instructions"`
	Notes           []string                  `json:"notes"`
	RawText         []string                  `json:"raw_text,omitempty"`
	ClassifiedLines []classify.ClassifiedLine `json:"classified_lines,omitempty"`
	SkippedLines    []classify.ClassifiedLine `json:"skipped_lines,omitempty"`
}

// MarshalJSON 以欄位名稱輸出
func (d *Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(draftJSON{
		Title:           d.Title,
		Summary:         d.Summary(),
		Servings:        d.Servings(),
		Timings:         d.Timings(),
		Ingredients:     d.Ingredients(),
		Instructions:    d.Instructions(),
		Notes:           d.Notes(),
		RawText:         d.RawText,
		ClassifiedLines: d.ClassifiedLines,
		SkippedLines:    d.SkippedLines,
	})
}

// UnmarshalJSON 讀回 MarshalJSON 的格式
func (d *Draft) UnmarshalJSON(data []byte) error {
	var v draftJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = *NewDraft()
	d.Title = v.Title
	d.RawText = v.RawText
	d.ClassifiedLines = v.ClassifiedLines
	d.SkippedLines = v.SkippedLines
	d.Set(FieldSummary, v.Summary)
	d.Set(FieldServings, v.Servings)
	d.Set(FieldTimings, v.Timings)
	d.Set(FieldIngredients, v.Ingredients)
	d.Set(FieldInstructions, v.Instructions)
	d.Set(FieldNotes, v.Notes)
	return nil
}
