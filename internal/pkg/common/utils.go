package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得請求 ID，沒有時產生新的並寫回 header
func RequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.Writer.Header().Get("X-Request-ID")
	}
	if requestID == "" {
		requestID = GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// WriteError 寫入錯誤響應並中止後續處理
func WriteError(c *gin.Context, err error) {
	ce := AsCustomError(err)
	debug := gin.Mode() != gin.ReleaseMode

	fields := []zap.Field{
		zap.String("code", ce.Code),
		zap.Int("status", ce.Status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if ce.Err != nil {
		fields = append(fields, zap.Error(ce.Err))
	}
	if ce.Status >= 500 {
		LogError(ce.Message, fields...)
	} else {
		LogWarn(ce.Message, fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, ce.Response(debug))
}
