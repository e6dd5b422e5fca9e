package pipeline

import (
	"context"
	"fmt"
	"strings"

	"recipe-importer/internal/core/ocr"
	"recipe-importer/internal/core/source"
	"recipe-importer/internal/pkg/common"
)

// SourceKind 匯入來源種類
type SourceKind string

const (
	SourceText  SourceKind = "text"
	SourceLines SourceKind = "lines"
	SourceHTML  SourceKind = "html"
	SourceImage SourceKind = "image"
	SourceURL   SourceKind = "url"
)

// Source 一次匯入的輸入，依 Kind 使用對應欄位
type Source struct {
	Kind  SourceKind
	Text  string
	Lines []string
	HTML  string
	Image []byte
	URL   string
}

// TextSource 貼上的文字
func TextSource(text string) Source { return Source{Kind: SourceText, Text: text} }

// LinesSource 已切好的行
func LinesSource(lines []string) Source { return Source{Kind: SourceLines, Lines: lines} }

// HTMLSource HTML 片段或整頁
func HTMLSource(html string) Source { return Source{Kind: SourceHTML, HTML: html} }

// ImageSource 待 OCR 的圖片
func ImageSource(image []byte) Source { return Source{Kind: SourceImage, Image: image} }

// URLSource 食譜網頁
func URLSource(url string) Source { return Source{Kind: SourceURL, URL: url} }

// Acquire 取得來源的文字行；沒有任何非空白行時回傳 common.ErrNoTextDetected。
// URL 來源不經過逐行流程，呼叫端應改用網頁擷取器。
func Acquire(ctx context.Context, src Source, recognizer ocr.Recognizer) ([]string, error) {
	var lines []string
	switch src.Kind {
	case SourceText:
		lines = source.SplitText(src.Text)
	case SourceLines:
		lines = src.Lines
	case SourceHTML:
		var err error
		if lines, err = source.HTMLLines(src.HTML); err != nil {
			return nil, common.ErrParsingFailed.WithErr(err)
		}
	case SourceImage:
		if recognizer == nil {
			return nil, common.ErrNoTextDetected.WithErr(fmt.Errorf("no OCR recognizer configured"))
		}
		lines = recognizer.RecognizeText(ctx, src.Image)
	default:
		return nil, common.ErrInvalidRequest.WithErr(fmt.Errorf("unsupported source kind %q", src.Kind))
	}

	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return lines, nil
		}
	}
	return nil, common.ErrNoTextDetected
}
