// Package ocr 以外部 OCR 指令（預設 tesseract）辨識圖片中的文字行
package ocr

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// Recognizer 文字辨識能力；失敗時回傳空切片，不回傳錯誤
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte) []string
}

// Options 指令設定
type Options struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// CommandRecognizer 把圖片從 stdin 送進 OCR 指令並讀取 stdout
type CommandRecognizer struct {
	command string
	args    []string
	timeout time.Duration
	cleaner *Cleaner
}

// NewCommandRecognizer 建立指令辨識器，未指定指令時使用 tesseract stdin stdout
func NewCommandRecognizer(opts Options) *CommandRecognizer {
	if opts.Command == "" {
		opts.Command = "tesseract"
		opts.Args = []string{"stdin", "stdout"}
	}
	return &CommandRecognizer{
		command: opts.Command,
		args:    opts.Args,
		timeout: opts.Timeout,
		cleaner: NewCleaner(),
	}
}

// RecognizeText 實作 Recognizer
func (r *CommandRecognizer) RecognizeText(ctx context.Context, image []byte) []string {
	if len(image) == 0 {
		return []string{}
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.command, r.args...)
	cmd.Stdin = bytes.NewReader(image)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		fields := []zap.Field{
			zap.String("command", r.command),
			zap.Error(err),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			fields = append(fields, zap.Duration("timeout", r.timeout))
		}
		common.LogWarn("ocr command failed", fields...)
		return []string{}
	}

	lines := r.cleaner.Lines(stdout.String())
	common.LogDebug("ocr completed",
		zap.Int("image_bytes", len(image)),
		zap.Int("lines", len(lines)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return lines
}

// Cleaner 清理 OCR 輸出的常見雜訊
type Cleaner struct {
	replacer      *strings.Replacer
	noise         *regexp.Regexp
	punctOnlyLine *regexp.Regexp
	multiSpace    *regexp.Regexp
}

// NewCleaner 建立清理器
func NewCleaner() *Cleaner {
	return &Cleaner{
		replacer: strings.NewReplacer(
			"ﬁ", "fi",
			"ﬂ", "fl",
			"ﬀ", "ff",
			"ﬃ", "ffi",
			"ﬄ", "ffl",
			"\r", "",
			"\f", "\n",
			"\u00a0", " ",
		),
		noise:         regexp.MustCompile(`(?i)no\s+best\s+words!+|\bdetected\s+\d+\s+diacritics\b`),
		punctOnlyLine: regexp.MustCompile(`^[\p{P}\s]*$`),
		multiSpace:    regexp.MustCompile(`[ \t]{2,}`),
	}
}

// Lines 清理並切成非空白行，保留原本順序
func (c *Cleaner) Lines(text string) []string {
	text = c.noise.ReplaceAllString(c.replacer.Replace(text), "")
	lines := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(c.multiSpace.ReplaceAllString(line, " "))
		if c.punctOnlyLine.MatchString(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
