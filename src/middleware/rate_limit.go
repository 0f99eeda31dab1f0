package middleware

import (
	"net/http"
	"sync"

	"ria-board/src/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ipLimiters クライアントIPごとのレートリミッター
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware IPごとのレート制限用のmiddleware
func RateLimitMiddleware(requestsPerSecond float64, burst int) gin.HandlerFunc {
	limiters := &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(requestsPerSecond),
		burst:    burst,
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !limiters.get(clientIP).Allow() {
			logger.WithField("client_ip", clientIP).Warn("レート制限に達しました")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too Many Requests",
				"retry_after": 1,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
