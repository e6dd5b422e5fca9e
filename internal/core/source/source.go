// Package source 把使用者提供的內容轉為逐行文字，供重建與分類使用
package source

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	headingPattern    = regexp.MustCompile(`^#{1,6}\s+`)
	bulletPattern     = regexp.MustCompile(`^\s*[-*+]\s+`)
	quotePattern      = regexp.MustCompile(`^(?:>\s?)+`)
	imagePattern      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	emphasisPattern   = regexp.MustCompile(`(\*\*|__|\*|_|~~)([^*_~]+)(\*\*|__|\*|_|~~)`)
	codePattern       = regexp.MustCompile("`([^`]*)`")
	escapePattern     = regexp.MustCompile(`\\([\\` + "`" + `*_{}\[\]()#+\-.!|>~])`)
	rulePattern       = regexp.MustCompile(`^(?:[-*_]\s*){3,}$`)
	tableSepPattern   = regexp.MustCompile(`^\|?\s*:?-+:?\s*(?:\|\s*:?-+:?\s*)*\|?$`)
	commentPattern    = regexp.MustCompile(`<!--.*?-->`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// listBullet 無序清單項目轉換後的前綴，讓重建器把每個項目視為新的一行
const listBullet = "• "

// SplitText 以換行切分貼上的文字，保留空白行以維持行號
func SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return lines
}

// HTMLLines 把 HTML 轉成 Markdown 後逐行去除標記，回傳非空白行
func HTMLLines(html string) ([]string, error) {
	if strings.TrimSpace(html) == "" {
		return nil, nil
	}
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return nil, fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return MarkdownLines(markdown), nil
}

// MarkdownLines 去除 Markdown 語法，回傳非空白行
func MarkdownLines(markdown string) []string {
	var lines []string
	inFence := false
	for _, raw := range SplitText(markdown) {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			if line != "" {
				lines = append(lines, line)
			}
			continue
		}
		if line = stripMarkdown(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func stripMarkdown(line string) string {
	// html-to-markdown 在相鄰清單之間插入 <!--THE END-->
	line = strings.TrimSpace(commentPattern.ReplaceAllString(line, ""))
	if line == "" || rulePattern.MatchString(line) || tableSepPattern.MatchString(line) && strings.Contains(line, "|") {
		return ""
	}

	line = quotePattern.ReplaceAllString(line, "")
	line = headingPattern.ReplaceAllString(line, "")

	bullet := ""
	if loc := bulletPattern.FindStringIndex(line); loc != nil {
		bullet = listBullet
		line = line[loc[1]:]
	}

	if strings.HasPrefix(line, "|") {
		line = strings.ReplaceAll(strings.Trim(line, "|"), "|", " ")
	}

	line = imagePattern.ReplaceAllString(line, "")
	line = linkPattern.ReplaceAllString(line, "$1")
	line = codePattern.ReplaceAllString(line, "$1")
	for {
		next := emphasisPattern.ReplaceAllString(line, "$2")
		if next == line {
			break
		}
		line = next
	}
	line = escapePattern.ReplaceAllString(line, "$1")
	line = strings.TrimSpace(whitespacePattern.ReplaceAllString(line, " "))

	if line == "" {
		return ""
	}
	return bullet + line
}
