package handlers

import (
	"errors"
	"io"
	"net/http"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// BindJSON 解析請求 JSON，超過大小上限時回傳 ErrPayloadTooLarge，其餘為驗證錯誤
func BindJSON(c *gin.Context, v interface{}) error {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return common.ErrPayloadTooLarge.Wrap(err)
	case errors.Is(err, io.EOF):
		return common.NewValidationError("request body is required")
	default:
		return common.NewValidationError("invalid request body: " + err.Error())
	}
}
