package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"app/internal/ratelimit"

	"github.com/labstack/echo/v4"
)

type throttledResponse struct {
	Detail string `json:"detail"`
}

// RateLimit は呼び出し元単位の固定窓スロットリング。
// 認証後に使う場合はuser_id、それ以外はリモートIPでキーを作る
func RateLimit(limiter *ratelimit.FixedWindow) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if v := c.Get(CtxUserIDKey); v != nil {
				if userID, ok := v.(int64); ok && userID > 0 {
					key = "user:" + strconv.FormatInt(userID, 10)
				}
			}

			ok, retryAfter := limiter.Allow(key)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, throttledResponse{
					Detail: fmt.Sprintf("request was throttled. expected available in %d seconds", retryAfter),
				})
			}

			return next(c)
		}
	}
}
