package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prashanttechie/portfolio-project/internal/auth"
	"github.com/prashanttechie/portfolio-project/internal/shared/apperr"
)

const (
	CtxKeyClaims    = "auth_claims"
	AdminCookieName = "admin_session"
	bearerPrefix    = "bearer "
)

// RequireAdmin accepts an admin JWT from the Authorization header or the admin_session cookie.
func RequireAdmin(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			Fail(c, apperr.UnauthorizedErr("Authentication required"))
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			Fail(c, apperr.UnauthorizedErr("Invalid or expired token"))
			return
		}
		if claims.Role != auth.RoleAdmin {
			Fail(c, apperr.ForbiddenErr("Admin access required"))
			return
		}

		c.Set(CtxKeyClaims, claims)
		c.Next()
	}
}

func CurrentClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxKeyClaims)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	if v, err := c.Cookie(AdminCookieName); err == nil {
		return v
	}
	return ""
}
