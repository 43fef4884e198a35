package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geoattend/attendance-api/internal/models"
	appErrors "github.com/geoattend/attendance-api/pkg/errors"
	"github.com/geoattend/attendance-api/pkg/response"
)

// ContextUserKey is the gin context key storing the verified identity.
const ContextUserKey = "currentUser"

// TokenVerifier turns a bearer credential into an identity.
type TokenVerifier interface {
	Verify(token string, expected ...models.Role) (*models.Identity, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, identity)
		c.Next()
	}
}

// AdminGuard requires an admin token when required is true. When it is
// false admin routes are open, and a valid token is still attached if sent.
func AdminGuard(verifier TokenVerifier, required bool) gin.HandlerFunc {
	if required {
		jwtMW := JWT(verifier)
		roleMW := RequireRoles(models.RoleAdmin)
		return func(c *gin.Context) {
			jwtMW(c)
			if c.IsAborted() {
				return
			}
			roleMW(c)
		}
	}
	return func(c *gin.Context) {
		if token, err := bearerToken(c.GetHeader("Authorization")); err == nil {
			if identity, err := verifier.Verify(token, models.RoleAdmin); err == nil {
				c.Set(ContextUserKey, identity)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity set by JWT, or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", appErrors.ErrMissingCredential
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", appErrors.Clone(appErrors.ErrMissingCredential, "invalid authorization header")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", appErrors.ErrMissingCredential
	}
	return token, nil
}
