package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplicator 擋下時間窗內內容相同的重複 POST
type Deduplicator struct {
	mu          sync.Mutex
	window      time.Duration
	requests    map[string]time.Time
	lastCleanup time.Time
	now         func() time.Time
}

// NewDeduplicator 創建去重器，window 預設 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window:      window,
		requests:    make(map[string]time.Time),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// seen 記錄指紋，時間窗內重複出現時回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if now.Sub(d.lastCleanup) > 10*d.window {
		for k, t := range d.requests {
			if now.Sub(t) > d.window {
				delete(d.requests, k)
			}
		}
		d.lastCleanup = now
	}

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Handler 請求去重中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		h := sha256.New()
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.WriteError(c, bodyReadError(err))
				return
			}
			h.Write(body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + hex.EncodeToString(h.Sum(nil))
		if d.seen(fingerprint) {
			common.LogInfo("重複請求已忽略",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			common.WriteError(c, common.ErrTooManyRequests.Wrap(fmt.Errorf("duplicate request within %s", d.window)))
			return
		}

		c.Next()
	}
}

// bodyReadError 讀取請求體失敗時對應的錯誤
func bodyReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return common.ErrPayloadTooLarge.Wrap(err)
	}
	return common.ErrInvalidRequest.Wrap(err)
}
