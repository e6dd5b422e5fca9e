package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-importer/internal/core/cache"
	"recipe-importer/internal/core/pipeline"
)

// QueueReporter 回報匯入佇列狀態
type QueueReporter interface {
	Status() pipeline.Status
}

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status     string                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Version    string                 `json:"version"`
	Classifier string                 `json:"classifier"`
	Runtime    map[string]interface{} `json:"runtime"`
	Queue      *pipeline.Status       `json:"queue,omitempty"`
	Cache      *cache.Stats           `json:"cache,omitempty"`
}

// Handler 健康檢查處理器
type Handler struct {
	version    string
	classifier string
	queue      QueueReporter
	cache      cache.Store
}

// NewHandler 建立健康檢查處理器；queue 與 store 可為 nil
func NewHandler(version, classifier string, queue QueueReporter, store cache.Store) *Handler {
	return &Handler{version: version, classifier: classifier, queue: queue, cache: store}
}

// HealthCheck 回傳版本、執行期資訊、佇列與快取狀態
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now(),
		Version:    h.version,
		Classifier: h.classifier,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		status := h.queue.Status()
		response.Queue = &status
	}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		stats := sp.Stats()
		response.Cache = &stats
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 佇列滿載時回報未就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.queue != nil {
		status := h.queue.Status()
		if status.QueueLength >= status.MaxQueueSize {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "busy",
				"queue":  status,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
