// Package handlers 放置各 handler 共用的回應輔助函式
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-importer/internal/pkg/common"
)

// RespondError 把錯誤轉成統一的 JSON 錯誤回應；debug 時附上原始錯誤
func RespondError(c *gin.Context, err error, debug bool) {
	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
	case errors.Is(err, context.DeadlineExceeded):
		ce = common.ErrGatewayTimeout.WithErr(err)
	default:
		ce = common.ErrInternalError.WithErr(err)
	}

	status := ce.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	fields := []zap.Field{
		zap.String("request_id", requestid.Get(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("code", ce.Code),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("request failed", fields...)
	} else {
		common.LogWarn("request rejected", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ce.Response(debug))
}

// BindJSON 解析請求內容，失敗時回應 INVALID_REQUEST 並回傳 false
func BindJSON(c *gin.Context, v interface{}, debug bool) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		RespondError(c, common.ErrInvalidRequest.WithErr(err), debug)
		return false
	}
	return true
}
