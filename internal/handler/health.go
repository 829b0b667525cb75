package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// probe checks one dependency within the request deadline.
type probe func(ctx context.Context) error

// Health reports whether the pricing service can reach Postgres and Redis.
// The payload stays coarse (component name, ok/down); connection details
// never leave the process.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return healthHandler(map[string]probe{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})
}

func healthHandler(probes map[string]probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		components := make(gin.H, len(probes))
		for name, check := range probes {
			if err := check(ctx); err != nil {
				components[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		c.JSON(status, gin.H{
			"service":    "papeterie-pricing",
			"ok":         status == http.StatusOK,
			"components": components,
		})
	}
}
