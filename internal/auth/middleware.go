package auth

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/venezia/venezia-pos/api/posv1"
)

const claimsKey = "auth.claims"

// Guard builds the gin middleware. With auth disabled every request runs as a
// local admin so development setups need no tokens.
type Guard struct {
	issuer  *Issuer
	enabled bool
}

func NewGuard(issuer *Issuer, enabled bool) *Guard {
	return &Guard{issuer: issuer, enabled: enabled && issuer != nil}
}

func (g *Guard) Enabled() bool { return g.enabled }

func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !g.enabled {
			c.Set(claimsKey, &Claims{UserID: "local", Role: RoleAdmin})
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, posv1.Fail(posv1.CodeUnauthorized, "authorization header required"))
			return
		}

		claims, err := g.issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, posv1.Fail(posv1.CodeUnauthorized, "invalid or expired token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func (g *Guard) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, posv1.Fail(posv1.CodeUnauthorized, "unauthorized"))
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, claims.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, posv1.Fail(posv1.CodeForbidden, "insufficient role"))
			return
		}
		c.Next()
	}
}

// Chain authenticates and then requires one of roles.
func (g *Guard) Chain(roles ...string) gin.HandlersChain {
	return gin.HandlersChain{g.Authenticate(), g.RequireRole(roles...)}
}

func FromContext(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
