package middlewares

import (
	"net/http"
	"strings"

	"github.com/Danielsjcampos/elance-sub000/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrgScopeMiddleware reads the franchise-unit scope the caller was
// already authorized for. Authorization itself happens upstream; this
// layer only refuses requests with no usable scope.
func OrgScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		organizationId := strings.TrimSpace(c.Request.Header.Get("X-Organization-Id"))
		if organizationId == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Organization-Id header"})
			c.Abort()
			return
		}
		if _, err := uuid.Parse(organizationId); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed X-Organization-Id header"})
			c.Abort()
			return
		}

		ctx := utils.SetOrganizationIdInContext(c.Request.Context(), organizationId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// CorrelationMiddleware propagates a request correlation id into the
// context; pending intents record it for reconciliation.
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := strings.TrimSpace(c.Request.Header.Get("X-Correlation-Id"))
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), correlationId)
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set("X-Correlation-Id", correlationId)
		c.Next()
	}
}
