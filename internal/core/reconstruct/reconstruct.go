// Package reconstruct 修復 OCR 與貼上文字的斷行：合併被折行的句子、
// 剔除雜訊行，並從開頭取出標題候選。
package reconstruct

import (
	"strings"
	"unicode"

	"recipe-importer/internal/core/ingredient"
)

// minLineLength 短於此長度（去除空白後，以字元計）的行視為雜訊
const minLineLength = 3

// listSymbols 開頭出現即代表新的一行（項目符號、破折號、排版記號）
const listSymbols = "-–—•·*▪◦‣►▸○●◆◇■□✓✔☐#>+~"

// Result 重建結果
type Result struct {
	Title     string   `json:"title"`
	Lines     []string `json:"lines"`
	Artifacts []string `json:"artifacts"`
}

// Reconstruct 重建文字行
//
// 全大寫的開頭行（可連續多行）合併為標題並單獨成為一行；
// 其他情況下第一行同時是標題並作為本文累加的起點，
// 因此 ["Mix the", "flour and sugar."] 仍會合併成一句。
func Reconstruct(lines []string) Result {
	res := Result{Lines: []string{}, Artifacts: []string{}}

	kept := make([]string, 0, len(lines))
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if isArtifact(line) {
			res.Artifacts = append(res.Artifacts, line)
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return res
	}

	body := kept
	var current string
	if isUpperCase(kept[0]) {
		n := 1
		for n < len(kept) && isUpperCase(kept[n]) {
			n++
		}
		res.Title = strings.Join(kept[:n], " ")
		res.Lines = append(res.Lines, res.Title)
		body = kept[n:]
	} else {
		res.Title = kept[0]
		current = kept[0]
		body = kept[1:]
		if endsSentence(current) {
			res.Lines = append(res.Lines, current)
			current = ""
		}
	}

	for _, line := range body {
		if current == "" || startsNewLine(line) {
			if current != "" {
				res.Lines = append(res.Lines, current)
			}
			current = line
		} else {
			current += " " + line
		}
		if endsSentence(current) {
			res.Lines = append(res.Lines, current)
			current = ""
		}
	}
	if current != "" {
		res.Lines = append(res.Lines, current)
	}
	return res
}

func isArtifact(line string) bool {
	if len([]rune(line)) < minLineLength {
		return true
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isUpperCase 至少含一個字母且沒有小寫字母
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

func startsNewLine(line string) bool {
	r := []rune(line)[0]
	switch {
	case unicode.IsUpper(r), unicode.IsDigit(r):
		return true
	case strings.ContainsRune(listSymbols, r):
		return true
	case ingredient.IsFractionGlyph(r):
		return true
	}
	return false
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".")
}
