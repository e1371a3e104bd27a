package middlewares

import (
	"cbe/src/lib"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimit applies a fixed-window per-client limit backed by redis. The
// limiter fails open when redis is unreachable so an infra outage never takes
// the booking surface down with it.
func RateLimit(name string, limit int64, window time.Duration) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		rd := lib.GetRedisClient()
		if rd == nil {
			ctx.Next()
			return
		}
		key := fmt.Sprintf("ratelimit:%s:%s", name, ctx.ClientIP())
		count, err := rd.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("[ratelimit] error incrementing %s: %s\n", key, err.Error())
			ctx.Next()
			return
		}
		if count == 1 {
			rd.Expire(ctx, key, window)
		}
		if count > limit {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try later."})
			return
		}
	}
}
