// Package importer 提供食譜匯入相關的 HTTP 端點
package importer

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-importer/internal/api/handlers"
	"recipe-importer/internal/core/boundary"
	"recipe-importer/internal/core/image"
	"recipe-importer/internal/core/ingredient"
	"recipe-importer/internal/core/pipeline"
	"recipe-importer/internal/core/postprocess"
	"recipe-importer/internal/core/recipe"
	"recipe-importer/internal/core/source"
	"recipe-importer/internal/pkg/common"
)

// Submitter 執行匯入的佇列
type Submitter interface {
	Submit(ctx context.Context, src pipeline.Source) (*recipe.Draft, error)
}

// ImageLoader 載入並驗證圖片
type ImageLoader interface {
	Load(ctx context.Context, input string) (*image.Image, error)
}

// Segmenter 多食譜切分
type Segmenter interface {
	Detect(ctx context.Context, lines []string) []boundary.Segment
}

// TextRequest 貼上的文字，text 與 lines 擇一
type TextRequest struct {
	Text  string   `json:"text"`
	Lines []string `json:"lines"`
}

// HTMLRequest HTML 內容
type HTMLRequest struct {
	HTML string `json:"html" binding:"required"`
}

// ImageRequest 圖片，data URI 或 http(s) 網址
type ImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// URLRequest 食譜網頁網址
type URLRequest struct {
	URL string `json:"url" binding:"required"`
}

// ParseIngredientsRequest 待拆解的食材行
type ParseIngredientsRequest struct {
	Lines []string `json:"lines" binding:"required,min=1"`
}

// NormalizeRequest 使用者編輯後的草稿
type NormalizeRequest struct {
	Draft *recipe.Draft `json:"draft" binding:"required"`
}

// ImportResponse 匯入結果
type ImportResponse struct {
	RequestID string         `json:"request_id"`
	Draft     *recipe.Draft  `json:"draft"`
	Recipe    *recipe.Recipe `json:"recipe"`
}

// SegmentsResponse 切分結果
type SegmentsResponse struct {
	RequestID string             `json:"request_id"`
	Segments  []boundary.Segment `json:"segments"`
}

// ParsedIngredient 單行食材的拆解結果
type ParsedIngredient struct {
	Input      string                `json:"input"`
	Parsed     bool                  `json:"parsed"`
	Ingredient ingredient.Ingredient `json:"ingredient"`
	Display    string                `json:"display,omitempty"`
}

// Handler 匯入處理器
type Handler struct {
	runner   Submitter
	images   ImageLoader
	detector Segmenter
	debug    bool
}

// NewHandler 建立匯入處理器
func NewHandler(runner Submitter, images ImageLoader, detector Segmenter, debug bool) *Handler {
	return &Handler{runner: runner, images: images, detector: detector, debug: debug}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	imports := rg.Group("/import")
	{
		imports.POST("/text", h.ImportText)
		imports.POST("/html", h.ImportHTML)
		imports.POST("/image", h.ImportImage)
		imports.POST("/url", h.ImportURL)
	}
	rg.POST("/segments", h.Segments)
	rg.POST("/ingredients/parse", h.ParseIngredients)
	rg.POST("/normalize", h.Normalize)
}

// ImportText 匯入貼上的文字或已切好的行
func (h *Handler) ImportText(c *gin.Context) {
	var req TextRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}
	src := pipeline.TextSource(req.Text)
	if len(req.Lines) > 0 {
		src = pipeline.LinesSource(req.Lines)
	}
	h.run(c, src)
}

// ImportHTML 匯入 HTML 內容
func (h *Handler) ImportHTML(c *gin.Context) {
	var req HTMLRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}
	h.run(c, pipeline.HTMLSource(req.HTML))
}

// ImportImage 載入圖片後以 OCR 匯入
func (h *Handler) ImportImage(c *gin.Context) {
	var req ImageRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	common.LogInfo("image import requested",
		zap.String("request_id", requestid.Get(c)),
		zap.String("image_type", imageType(req.Image)),
	)

	img, err := h.images.Load(c.Request.Context(), req.Image)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}
	h.run(c, pipeline.ImageSource(img.Data))
}

// ImportURL 從食譜網頁匯入
func (h *Handler) ImportURL(c *gin.Context) {
	var req URLRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}
	h.run(c, pipeline.URLSource(strings.TrimSpace(req.URL)))
}

func (h *Handler) run(c *gin.Context, src pipeline.Source) {
	draft, err := h.runner.Submit(c.Request.Context(), src)
	if err != nil {
		handlers.RespondError(c, err, h.debug)
		return
	}

	r := draft.ToRecipe()
	if src.Kind == pipeline.SourceURL {
		r.SourceURL = src.URL
	}
	c.JSON(http.StatusOK, ImportResponse{
		RequestID: requestid.Get(c),
		Draft:     draft,
		Recipe:    r,
	})
}

// Segments 把可能含多份食譜的文字切成片段
func (h *Handler) Segments(c *gin.Context) {
	var req TextRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}
	lines := req.Lines
	if len(lines) == 0 {
		lines = source.SplitText(req.Text)
	}
	if len(lines) == 0 {
		handlers.RespondError(c, common.ErrNoTextDetected, h.debug)
		return
	}

	segments := h.detector.Detect(c.Request.Context(), lines)
	if segments == nil {
		segments = []boundary.Segment{}
	}
	c.JSON(http.StatusOK, SegmentsResponse{
		RequestID: requestid.Get(c),
		Segments:  segments,
	})
}

// ParseIngredients 逐行拆解食材；無法拆解的行整行作為名稱
func (h *Handler) ParseIngredients(c *gin.Context) {
	var req ParseIngredientsRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}

	results := make([]ParsedIngredient, 0, len(req.Lines))
	for _, line := range req.Lines {
		p := ParsedIngredient{Input: line}
		if ing, ok := ingredient.ParseDetailed(line); ok {
			p.Parsed = true
			p.Ingredient = ing
			p.Display = ing.Display()
		}
		results = append(results, p)
	}
	c.JSON(http.StatusOK, gin.H{
		"request_id":  requestid.Get(c),
		"ingredients": results,
	})
}

// Normalize 對使用者編輯過的草稿重新正規化
func (h *Handler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if !handlers.BindJSON(c, &req, h.debug) {
		return
	}
	draft := postprocess.Process(req.Draft)
	c.JSON(http.StatusOK, ImportResponse{
		RequestID: requestid.Get(c),
		Draft:     draft,
		Recipe:    draft.ToRecipe(),
	})
}

// imageType 圖片來源類型（用於日誌記錄，不記錄內容）
func imageType(image string) string {
	switch {
	case strings.HasPrefix(image, "http://"), strings.HasPrefix(image, "https://"):
		return "url"
	case strings.HasPrefix(image, "data:image/"):
		if header, _, ok := strings.Cut(image, ";base64,"); ok {
			return "data_uri_" + strings.TrimPrefix(header, "data:image/")
		}
		return "invalid_data_uri"
	case image == "":
		return "empty"
	}
	return "unknown_format"
}
