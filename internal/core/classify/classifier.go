// Package classify 為每一行食譜文字指定標籤與信心分數。
// 實際判斷交給可替換的 Model；Classifier 只負責門檻與分桶。
package classify

import (
	"context"
	"strings"
	"sync"

	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// DefaultThreshold 進入分桶所需的最低信心分數
const DefaultThreshold = 0.65

// Model 行分類能力
type Model interface {
	Classify(ctx context.Context, text string) (Label, float64, error)
}

// ModelFunc 讓一般函式滿足 Model
type ModelFunc func(ctx context.Context, text string) (Label, float64, error)

// Classify 實作 Model
func (f ModelFunc) Classify(ctx context.Context, text string) (Label, float64, error) {
	return f(ctx, text)
}

// Classifier 行分類器
type Classifier struct {
	model     Model
	threshold float64

	unavailable sync.Once
}

// Option 分類器選項
type Option func(*Classifier)

// WithThreshold 設定分桶門檻
func WithThreshold(t float64) Option {
	return func(c *Classifier) {
		c.threshold = t
	}
}

// New 建立分類器；model 為 nil 時所有行皆為 unknown、信心 0
func New(model Model, opts ...Option) *Classifier {
	c := &Classifier{model: model, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold 目前的門檻
func (c *Classifier) Threshold() float64 {
	return c.threshold
}

// Available 是否有可用的模型
func (c *Classifier) Available() bool {
	return c.model != nil
}

// Classify 分類單行
func (c *Classifier) Classify(ctx context.Context, line string) ClassifiedLine {
	text := strings.TrimSpace(line)
	if c.model == nil {
		c.unavailable.Do(func() {
			common.LogWarn("line classifier unavailable, all lines classified as unknown",
				zap.String("code", common.ErrCodeClassificationUnavailable))
		})
		return ClassifiedLine{Text: text, Label: LabelUnknown}
	}

	label, confidence, err := c.model.Classify(ctx, text)
	if err != nil {
		common.LogWarn("line classification failed", zap.String("text", text), zap.Error(err))
		return ClassifiedLine{Text: text, Label: LabelUnknown}
	}
	if _, ok := ParseLabel(string(label)); !ok {
		label = LabelUnknown
	}
	return ClassifiedLine{Text: text, Label: label, Confidence: clamp(confidence)}
}

// Result ClassifyAll 的結果
type Result struct {
	Lines   []ClassifiedLine   `json:"lines"`
	Title   string             `json:"title,omitempty"`
	Buckets map[Label][]string `json:"buckets"`
	Skipped []ClassifiedLine   `json:"skipped"`
}

// Bucket 取得某標籤的行，依原始順序
func (r Result) Bucket(l Label) []string {
	return r.Buckets[l]
}

// ClassifyAll 分類所有行並分桶
//
// 信心 >= 門檻且不是 unknown 的行依原順序放入對應分桶，其餘放入 Skipped。
// 第一個達門檻的 title 行決定標題，之後的 title 不覆蓋。空行不送進模型。
func (c *Classifier) ClassifyAll(ctx context.Context, lines []string) Result {
	res := Result{
		Lines:   make([]ClassifiedLine, 0, len(lines)),
		Buckets: make(map[Label][]string),
		Skipped: []ClassifiedLine{},
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		cl := c.Classify(ctx, line)
		res.Lines = append(res.Lines, cl)

		if cl.Label == LabelUnknown || cl.Confidence < c.threshold {
			res.Skipped = append(res.Skipped, cl)
			continue
		}
		if cl.Label == LabelTitle && res.Title == "" {
			res.Title = cl.Text
		}
		res.Buckets[cl.Label] = append(res.Buckets[cl.Label], cl.Text)
	}
	return res
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
