package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skintellect/storefront/internal/gateway"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
}

// CompareProducts handles POST /api/ai/compare.
func CompareProducts(svc *gateway.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gateway.CompareRequest
		if !bindJSON(c, &req) {
			return
		}
		analysis, err := svc.Compare(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, analysis)
	}
}

// SafetyAudit handles POST /api/ai/safety-audit.
func SafetyAudit(svc *gateway.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req gateway.SafetyAuditRequest
		if !bindJSON(c, &req) {
			return
		}
		report, err := svc.SafetyAudit(c.Request.Context(), req)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, report)
	}
}
