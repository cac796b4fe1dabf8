package handler

import (
	"context"
	"net/http"
	"time"

	"snp/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// CacheStatus reports whether the ticket snapshot is loaded.
type CacheStatus interface {
	Cargado() bool
}

// Health returns a JSON health check response.
// Redis is optional: when not configured it reports "disabled" and does not
// affect the status code. Never exposes credentials or internals.
func Health(rdb *redis.Client, mailCB *infra.CircuitBreaker, tickets CacheStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		mailStatus := "unknown"
		if mailCB != nil {
			mailStatus = mailCB.State().String()
		}

		status := http.StatusOK
		if redisStatus == "error" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":            status == http.StatusOK,
			"redis":         redisStatus,
			"mail_breaker":  mailStatus,
			"tickets_cache": tickets.Cargado(),
		})
	}
}
