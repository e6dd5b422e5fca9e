// Package image 載入並驗證送進 OCR 的圖片
package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP

	"recipe-importer/internal/pkg/common"
)

// Image 驗證過的圖片
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	client       *resty.Client
}

// NewService 創建新的圖片處理服務
func NewService(maxSizeBytes int64, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Service{
		maxSizeBytes: maxSizeBytes,
		client:       resty.New().SetTimeout(fetchTimeout),
	}
}

// Load 接受 data URI 或 http(s) 網址，回傳驗證後的圖片。
// GIF 與 WebP 會轉成 PNG，讓 OCR 指令只需處理 JPEG/PNG。
func (s *Service) Load(ctx context.Context, input string) (*Image, error) {
	input = strings.TrimSpace(input)

	var (
		data []byte
		err  error
	)
	switch {
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		data, err = s.download(ctx, input)
	case strings.HasPrefix(input, "data:image/"):
		data, err = decodeDataURI(input)
	default:
		return nil, common.ErrInvalidImage.WithErr(fmt.Errorf("expected a data:image URI or an http(s) URL"))
	}
	if err != nil {
		return nil, common.ErrInvalidImage.WithErr(err)
	}
	return s.Decode(data)
}

// Decode 驗證原始圖片位元組
func (s *Service) Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, common.ErrInvalidImage.WithErr(fmt.Errorf("empty image"))
	}
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return nil, common.ErrInvalidImage.WithErr(fmt.Errorf("image size exceeds maximum limit of %d bytes", s.maxSizeBytes))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.ErrInvalidImage.WithErr(fmt.Errorf("failed to decode image: %w", err))
	}
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImage.WithErr(fmt.Errorf("unsupported image format: %s", format))
	}

	img := &Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}
	if format == "gif" || format == "webp" {
		if err := img.toPNG(); err != nil {
			return nil, common.ErrInvalidImage.WithErr(err)
		}
	}

	common.LogDebug("image loaded",
		zap.String("format", format),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("bytes", len(img.Data)),
	)
	return img, nil
}

func (img *Image) toPNG() error {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	img.Data = buf.Bytes()
	img.Format = "png"
	return nil
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("failed to download image: status code %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// decodeDataURI 解析 data:image/...;base64,... 格式
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("invalid base64 data format")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return data, nil
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}
