// Package pipeline 串接來源取得、重建、分類、欄位組裝與正規化，產生食譜草稿。
//
// 每個 Orchestrator 同時只處理一次匯入；並行匯入請透過 Runner，
// 它會為每個工作建立新的 Orchestrator。
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-importer/internal/core/classify"
	"recipe-importer/internal/core/ocr"
	"recipe-importer/internal/core/postprocess"
	"recipe-importer/internal/core/recipe"
	"recipe-importer/internal/core/reconstruct"
	"recipe-importer/internal/pkg/common"
)

// State 狀態機狀態
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// Stage 流程階段，用於進度回報
type Stage string

const (
	StageAcquire     Stage = "acquire"
	StageReconstruct Stage = "reconstruct"
	StageClassify    Stage = "classify"
	StageAssemble    Stage = "assemble"
	StageExtract     Stage = "extract"
	StagePostProcess Stage = "postprocess"
)

// RecipeExtractor 網頁食譜擷取能力
type RecipeExtractor interface {
	ExtractRecipe(ctx context.Context, url string) (*recipe.Recipe, error)
}

// Deps 流程依賴；Classifier 為 nil 時所有行皆為 unknown
type Deps struct {
	Classifier *classify.Classifier
	Recognizer ocr.Recognizer
	Extractor  RecipeExtractor
}

// Option Orchestrator 選項
type Option func(*Orchestrator)

// OnResult 成功時的回呼
func OnResult(fn func(*recipe.Draft)) Option {
	return func(o *Orchestrator) { o.onResult = fn }
}

// OnError 失敗時的回呼
func OnError(fn func(error)) Option {
	return func(o *Orchestrator) { o.onError = fn }
}

// OnProgress 每個階段開始時的回呼
func OnProgress(fn func(Stage)) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithPostProcess 是否在組裝後正規化草稿，預設開啟
func WithPostProcess(enabled bool) Option {
	return func(o *Orchestrator) { o.postProcess = enabled }
}

// Orchestrator 匯入流程狀態機：idle → processing → completed | error
type Orchestrator struct {
	deps        Deps
	postProcess bool
	onResult    func(*recipe.Draft)
	onError     func(error)
	onProgress  func(Stage)

	mu    sync.RWMutex
	state State
	draft *recipe.Draft
	err   error
}

// New 建立 Orchestrator
func New(deps Deps, opts ...Option) *Orchestrator {
	if deps.Classifier == nil {
		deps.Classifier = classify.New(nil)
	}
	o := &Orchestrator{deps: deps, postProcess: true, state: StateIdle}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State 目前狀態
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Draft 最近一次成功的草稿
func (o *Orchestrator) Draft() *recipe.Draft {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.draft
}

// Err 最近一次失敗的錯誤
func (o *Orchestrator) Err() error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.err
}

// Start 執行一次匯入。執行中再次呼叫會回傳 common.ErrPipelineBusy。
func (o *Orchestrator) Start(ctx context.Context, src Source) (*recipe.Draft, error) {
	o.mu.Lock()
	if o.state == StateProcessing {
		o.mu.Unlock()
		return nil, common.ErrPipelineBusy
	}
	o.state = StateProcessing
	o.draft = nil
	o.err = nil
	o.mu.Unlock()

	runID := common.GenerateUUID()
	start := time.Now()
	draft, err := o.run(ctx, runID, src)

	if err != nil {
		o.fail(err)
		common.LogError("import failed",
			zap.String("run_id", runID),
			zap.String("source", string(src.Kind)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	o.complete(draft)
	common.LogInfo("import completed",
		zap.String("run_id", runID),
		zap.String("source", string(src.Kind)),
		zap.String("title", draft.Title),
		zap.Int("ingredients", len(draft.Ingredients())),
		zap.Int("instructions", len(draft.Instructions())),
		zap.Duration("took", time.Since(start)),
	)
	return draft, nil
}

func (o *Orchestrator) complete(d *recipe.Draft) {
	o.mu.Lock()
	o.state = StateCompleted
	o.draft = d
	o.mu.Unlock()
	if o.onResult != nil {
		o.onResult(d)
	}
}

func (o *Orchestrator) fail(err error) {
	o.mu.Lock()
	o.state = StateError
	o.err = err
	o.mu.Unlock()
	if o.onError != nil {
		o.onError(err)
	}
}

func (o *Orchestrator) progress(s Stage) {
	if o.onProgress != nil {
		o.onProgress(s)
	}
}

func (o *Orchestrator) run(ctx context.Context, runID string, src Source) (*recipe.Draft, error) {
	if src.Kind == SourceURL {
		return o.runURL(ctx, runID, src.URL)
	}

	o.progress(StageAcquire)
	t := time.Now()
	lines, err := Acquire(ctx, src, o.deps.Recognizer)
	if err != nil {
		return nil, err
	}
	common.LogStage(runID, string(StageAcquire), time.Since(t), zap.Int("lines", len(lines)))

	o.progress(StageReconstruct)
	t = time.Now()
	rec := reconstruct.Reconstruct(lines)
	if len(rec.Lines) == 0 {
		return nil, common.ErrEmptyContent
	}
	common.LogStage(runID, string(StageReconstruct), time.Since(t),
		zap.Int("lines", len(rec.Lines)),
		zap.Int("artifacts", len(rec.Artifacts)),
	)

	o.progress(StageClassify)
	t = time.Now()
	res := o.deps.Classifier.ClassifyAll(ctx, rec.Lines)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	common.LogStage(runID, string(StageClassify), time.Since(t),
		zap.Int("classified", len(res.Lines)),
		zap.Int("skipped", len(res.Skipped)),
	)

	o.progress(StageAssemble)
	draft := assemble(lines, rec, res, o.deps.Classifier.Threshold())

	return o.finish(runID, draft), nil
}

func (o *Orchestrator) runURL(ctx context.Context, runID, url string) (*recipe.Draft, error) {
	if o.deps.Extractor == nil {
		return nil, common.ErrInternalError.WithErr(errors.New("no web extractor configured"))
	}

	o.progress(StageExtract)
	t := time.Now()
	r, err := o.deps.Extractor.ExtractRecipe(ctx, url)
	if err != nil {
		return nil, err
	}
	common.LogStage(runID, string(StageExtract), time.Since(t),
		zap.String("method", string(r.Method)),
		zap.Int("ingredients", len(r.IngredientLines)),
	)

	draft := recipe.DraftFromRecipe(r)
	draft.RawText = append(append([]string{}, r.IngredientLines...), r.Instructions...)
	return o.finish(runID, draft), nil
}

func (o *Orchestrator) finish(runID string, d *recipe.Draft) *recipe.Draft {
	if !o.postProcess {
		return d
	}
	o.progress(StagePostProcess)
	t := time.Now()
	out := postprocess.Process(d)
	common.LogStage(runID, string(StagePostProcess), time.Since(t))
	return out
}

// assemble 依標籤把分類結果放入草稿欄位。
// "Notes"、"Tips" 段落標題之後、未被分桶的行視為備註，直到下一個段落標題。
func assemble(raw []string, rec reconstruct.Result, res classify.Result, threshold float64) *recipe.Draft {
	d := recipe.NewDraft()
	d.Title = res.Title
	if d.Title == "" {
		d.Title = rec.Title
	}
	d.RawText = append([]string{}, raw...)
	d.ClassifiedLines = res.Lines
	d.SkippedLines = res.Skipped

	inNotes := false
	for _, cl := range res.Lines {
		if cl.Label != classify.LabelUnknown && cl.Confidence >= threshold {
			if f, ok := recipe.FieldForLabel(cl.Label); ok {
				d.Append(f, cl.Text)
			}
			continue
		}
		if header, ok := classify.SectionHeader(cl.Text); ok {
			inNotes = header == "notes" || header == "tips"
			continue
		}
		if inNotes {
			d.Append(recipe.FieldNotes, cl.Text)
		}
	}
	return d
}
