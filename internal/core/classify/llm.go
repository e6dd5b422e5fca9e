package classify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const classifyPrompt = `You label single lines of recipe text.
Allowed labels: title, ingredient, instruction, summary, time, serving, unknown.
Reply with JSON only: {"label": "<label>", "confidence": <number between 0 and 1>}.
Line: %q`

// LLMOptions OpenRouter 連線設定
type LLMOptions struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// LLMModel 透過 OpenRouter chat completion 分類單行，結果可快取
type LLMModel struct {
	opts   LLMOptions
	client *resty.Client
	cache  cache.Store
}

// NewLLMModel 建立 LLM 模型；store 可為 nil
func NewLLMModel(opts LLMOptions, store cache.Store) *LLMModel {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 60
	}
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", opts.APIKey)).
		SetHeader("X-Title", "Recipe Importer")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if store == nil {
		store = cache.Noop{}
	}
	return &LLMModel{opts: opts, client: client, cache: store}
}

type llmLabel struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify 實作 Model
func (m *LLMModel) Classify(ctx context.Context, text string) (Label, float64, error) {
	key := cache.Key("classify:"+m.opts.Model, text)
	if cached, err := m.cache.Get(ctx, key); err == nil {
		if label, conf, ok := decodeCached(cached); ok {
			return label, conf, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		common.LogWarn("classification cache lookup failed", zap.Error(err))
	}

	content, err := m.complete(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		return LabelUnknown, 0, err
	}

	var out llmLabel
	raw := common.ExtractJSONObject(content)
	if err := common.ParseJSON(raw, &out); err != nil {
		// 部分模型會省略鍵的雙引號
		if err := common.ParseJSON(common.QuoteJSONKeys(raw), &out); err != nil {
			return LabelUnknown, 0, fmt.Errorf("failed to parse model reply: %w", err)
		}
	}
	label, ok := ParseLabel(out.Label)
	if !ok {
		return LabelUnknown, 0, fmt.Errorf("model returned unknown label %q", out.Label)
	}
	conf := clamp(out.Confidence)

	if err := m.cache.Set(ctx, key, encodeCached(label, conf)); err != nil {
		common.LogWarn("classification cache store failed", zap.Error(err))
	}
	return label, conf, nil
}

func (m *LLMModel) complete(ctx context.Context, prompt string) (string, error) {
	req := map[string]interface{}{
		"model": m.opts.Model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  m.opts.MaxTokens,
		"temperature": 0,
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("OpenRouter API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}
	return result.Choices[0].Message.Content, nil
}

func encodeCached(label Label, conf float64) string {
	return string(label) + "|" + strconv.FormatFloat(conf, 'f', -1, 64)
}

func decodeCached(s string) (Label, float64, bool) {
	name, rawConf, ok := strings.Cut(s, "|")
	if !ok {
		return LabelUnknown, 0, false
	}
	label, ok := ParseLabel(name)
	if !ok {
		return LabelUnknown, 0, false
	}
	conf, err := strconv.ParseFloat(rawConf, 64)
	if err != nil {
		return LabelUnknown, 0, false
	}
	return label, conf, true
}
