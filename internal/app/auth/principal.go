// Package auth carries the resolved caller of a request through the gin
// context.
package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/abiturient/internal/app/models"
	"github.com/yigit/abiturient/internal/pkg/apperrors"
)

const principalKey = "principal"

// Principal is the authenticated caller.
type Principal struct {
	ID        uuid.UUID
	Role      models.Role
	Name      string
	Email     string
	SessionID uuid.UUID
}

// HasRole reports whether the caller holds any of roles.
func (p Principal) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// SetPrincipal installs p as the caller of the request.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller installed by the authentication middleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// MustPrincipal is PrincipalFrom for handlers mounted behind the guard; a
// missing principal is reported as apperrors.ErrUnauthorized.
func MustPrincipal(c *gin.Context) (Principal, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return Principal{}, apperrors.ErrUnauthorized
	}
	return p, nil
}
