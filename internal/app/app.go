// Package app 依設定組裝匯入流程的所有元件，供 HTTP 服務與 CLI 共用
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"recipe-importer/internal/core/boundary"
	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/classify"
	"recipe-importer/internal/core/image"
	"recipe-importer/internal/core/ocr"
	"recipe-importer/internal/core/pipeline"
	"recipe-importer/internal/core/web"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// App 組裝好的元件
type App struct {
	Config     *config.Config
	Cache      cache.Store
	Classifier *classify.Classifier
	Detector   *boundary.Detector
	Extractor  *web.Extractor
	Recognizer ocr.Recognizer
	Images     *image.Service
	Runner     *pipeline.Runner
}

// Build 依設定建立所有元件
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	model, err := NewModel(cfg, store)
	if err != nil {
		closeStore(store)
		return nil, err
	}
	classifier := classify.New(model, classify.WithThreshold(cfg.Classifier.Threshold))

	fetcher := web.NewRestyFetcher(web.FetcherOptions{
		Timeout:   cfg.Web.Timeout,
		UserAgent: cfg.Web.UserAgent,
	})
	extractor := web.NewExtractor(fetcher,
		web.WithCache(store),
		web.WithMaxBodyBytes(cfg.Web.MaxBodyBytes),
	)

	recognizer := ocr.NewCommandRecognizer(ocr.Options{
		Command: cfg.OCR.Command,
		Args:    cfg.OCR.Args,
		Timeout: cfg.OCR.Timeout,
	})

	deps := pipeline.Deps{
		Classifier: classifier,
		Recognizer: recognizer,
		Extractor:  extractor,
	}
	runner := pipeline.NewRunner(deps, pipeline.RunnerOptions{
		Workers: cfg.Queue.Workers,
		MaxSize: cfg.Queue.MaxSize,
		Timeout: cfg.Queue.Timeout,
	})

	a := &App{
		Config:     cfg,
		Cache:      store,
		Classifier: classifier,
		Detector:   boundary.New(classifier, BoundaryConfig(cfg.Boundary)),
		Extractor:  extractor,
		Recognizer: recognizer,
		Images:     image.NewService(cfg.Image.MaxSizeBytes, cfg.Image.FetchTimeout),
		Runner:     runner,
	}

	common.LogInfo("components initialized",
		zap.String("classifier", cfg.Classifier.Model),
		zap.Float64("threshold", classifier.Threshold()),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("ocr_command", cfg.OCR.Command),
		zap.Int("queue_workers", cfg.Queue.Workers),
	)
	return a, nil
}

// Deps 單次匯入使用的依賴，CLI 直接建立 Orchestrator 時使用
func (a *App) Deps() pipeline.Deps {
	return pipeline.Deps{
		Classifier: a.Classifier,
		Recognizer: a.Recognizer,
		Extractor:  a.Extractor,
	}
}

// Close 停止佇列並關閉快取連線
func (a *App) Close() {
	if a.Runner != nil {
		a.Runner.Close()
	}
	closeStore(a.Cache)
}

// NewModel 依 classifier.model 建立行分類模型
func NewModel(cfg *config.Config, store cache.Store) (classify.Model, error) {
	switch cfg.Classifier.Model {
	case "rule", "":
		return classify.NewRuleModel(), nil
	case "llm":
		return classify.NewLLMModel(classify.LLMOptions{
			BaseURL:   cfg.OpenRouter.BaseURL,
			APIKey:    cfg.OpenRouter.APIKey,
			Model:     cfg.OpenRouter.Model,
			MaxTokens: cfg.OpenRouter.MaxTokens,
			Timeout:   cfg.OpenRouter.Timeout,
		}, store), nil
	default:
		return nil, fmt.Errorf("unknown classifier model %q", cfg.Classifier.Model)
	}
}

// BoundaryConfig 把設定檔的切分參數轉為 boundary.Config
func BoundaryConfig(c config.BoundaryConfig) boundary.Config {
	return boundary.Config{
		TitleConfidence:  c.TitleConfidence,
		MinTitleGap:      c.MinTitleGap,
		MinEndMarkerGap:  c.MinEndMarkerGap,
		TitleWindow:      c.TitleWindow,
		ConfidenceWeight: c.ConfidenceWeight,
		PositionWeight:   c.PositionWeight,
		CapitalWeight:    c.CapitalWeight,
		WordCountWeight:  c.WordCountWeight,
		CapitalizedRatio: c.CapitalizedRatio,
		MinTitleWords:    c.MinTitleWords,
		MaxTitleWords:    c.MaxTitleWords,
	}
}

func closeStore(store cache.Store) {
	if c, ok := store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			common.LogWarn("failed to close cache", zap.Error(err))
		}
	}
}
