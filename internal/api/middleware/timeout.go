package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Timeout 為每個請求設定逾時，處理器尚未寫出響應時回傳 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.WriteError(c, common.ErrGatewayTimeout.Wrap(fmt.Errorf("request exceeded %s", d)))
		}
	}
}
