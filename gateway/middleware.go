package gateway

import (
	"net/http"
	"strings"

	"github.com/example/clickmenu/pkg/auth"
	"github.com/example/clickmenu/pkg/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "claims"

// requireRole verifies the bearer token and stores its claims on the context.
func (g *Gateway) requireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || raw == "" || raw == header {
			abort(c, http.StatusUnauthorized, "Missing token")
			return
		}
		claims, err := g.tokens.Parse(raw)
		if err != nil {
			g.logger.Debug("Token rejected", zap.Error(err))
			abort(c, http.StatusUnauthorized, "Invalid token")
			return
		}
		if claims.Role != role {
			abort(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func scopeFrom(c *gin.Context) service.Scope {
	v, ok := c.Get(claimsKey)
	if !ok {
		return service.Scope{}
	}
	claims := v.(*auth.Claims)
	if claims.Role == auth.RoleAdmin {
		return service.AdminScope(claims.Subject)
	}
	return service.MerchantScope(claims.StoreID)
}
