package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
	sri *infra.SRIClient
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client, sri *infra.SRIClient) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb, sri: sri}
}

// Check reports the health of the service's dependencies. Degraded deps flip
// the overall status but still return 200 so orchestrators can inspect detail.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	checks := gin.H{}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "down"
		status = "degraded"
	} else {
		checks["database"] = "ok"
	}

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		status = "degraded"
	} else {
		checks["redis"] = "ok"
	}

	if h.sri != nil {
		checks["sri_circuit_breaker"] = h.sri.BreakerState()
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "checks": checks})
}
