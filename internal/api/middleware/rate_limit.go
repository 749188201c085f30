package middleware

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: time.Now(),
		now:      time.Now,
	}
}

func (rl *RateLimiter) last() time.Time {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lastTime
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now
	rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// ClientRateLimiter 依客戶端分開計算的限流器，閒置超過時間窗的桶會被清除
type ClientRateLimiter struct {
	mu          sync.Mutex
	requests    int
	window      time.Duration
	buckets     map[string]*RateLimiter
	lastCleanup time.Time
	now         func() time.Time
}

// NewClientRateLimiter 創建依客戶端限流的限流器
func NewClientRateLimiter(requests int, window time.Duration) *ClientRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &ClientRateLimiter{
		requests:    requests,
		window:      window,
		buckets:     make(map[string]*RateLimiter),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow 檢查該客戶端是否允許請求
func (cl *ClientRateLimiter) Allow(client string) bool {
	cl.mu.Lock()
	now := cl.now()
	if now.Sub(cl.lastCleanup) > cl.window {
		// 閒置一個時間窗的桶已補滿，刪除與保留等價
		for k, b := range cl.buckets {
			if now.Sub(b.last()) > cl.window {
				delete(cl.buckets, k)
			}
		}
		cl.lastCleanup = now
	}

	b, ok := cl.buckets[client]
	if !ok {
		b = NewRateLimiter(cl.requests, cl.window)
		b.now = cl.now
		b.lastTime = now
		cl.buckets[client] = b
	}
	cl.mu.Unlock()

	return b.Allow()
}

// size 目前追蹤的客戶端數
func (cl *ClientRateLimiter) size() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.buckets)
}

// RateLimit 限流中間件，每個客戶端 IP 各自一個令牌桶
func RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return NewClientRateLimiter(requests, window).Handler()
}

// Handler 限流中間件
func (cl *ClientRateLimiter) Handler() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(cl.window.Seconds())))

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !cl.Allow(ip) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", retryAfter)
			common.WriteError(c, common.ErrTooManyRequests.Wrap(fmt.Errorf("limit is %d requests per %s", cl.requests, cl.window)))
			return
		}

		c.Next()
	}
}
