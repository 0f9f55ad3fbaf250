// Package ratelimiter は固定ウィンドウ方式のリクエスト制限を提供します。
// カウンターはRedisに保存するため、複数インスタンス間で共有されます。
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter は、ログインなどの操作の頻度をキー単位で制限します。
type RateLimiter struct {
	rdb      *redis.Client
	limit    int           // ウィンドウあたりの上限
	interval time.Duration // どの単位でリセットするか
	prefix   string
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// rdbがnilまたはlimitが0以下の場合、制限は無効になります。
func NewRateLimiter(rdb *redis.Client, limit int, interval time.Duration, prefix string) *RateLimiter {
	if interval <= 0 {
		interval = time.Minute
	}
	if prefix == "" {
		prefix = "throttle"
	}
	return &RateLimiter{
		rdb:      rdb,
		limit:    limit,
		interval: interval,
		prefix:   prefix,
	}
}

// Enabled は制限が有効かどうかを返します。nilレシーバーは無効として扱います。
func (rl *RateLimiter) Enabled() bool {
	return rl != nil && rl.rdb != nil && rl.limit > 0
}

// Allow はキーのカウンターを1増やし、上限内であればtrueを返します。
// 上限を超えた場合は、ウィンドウがリセットされるまでの残り時間も返します。
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if !rl.Enabled() {
		return true, 0, nil
	}
	k := fmt.Sprintf("%s:%s", rl.prefix, key)

	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, err
	}

	// TTL未設定（新規キー、または前回のEXPIREが失敗したキー）ならウィンドウを開始する
	remaining := ttl.Val()
	if remaining < 0 {
		if err := rl.rdb.PExpire(ctx, k, rl.interval).Err(); err != nil {
			return true, 0, err
		}
		remaining = rl.interval
	}

	if incr.Val() > int64(rl.limit) {
		return false, remaining, nil
	}
	return true, 0, nil
}

// Middleware はクライアントIPとルート単位でリクエストを制限するGinミドルウェアを返します。
// Redisエラー時はリクエストを通過させます（フェイルオープン）。
func Middleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		key := c.ClientIP() + ":" + c.FullPath()
		ok, retryAfter, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}
		if !ok {
			slog.Warn("rate limit exceeded", "remote_addr", c.ClientIP(), "path", c.FullPath(), "limit", rl.limit)
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"status": false, "message": "too many requests"})
			return
		}
		c.Next()
	}
}
