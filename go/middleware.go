package posserver

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/singgah-pos/internal/shared/errors"
)

// RoleHeader selects the POS screen the caller acts from. It is a selector, not authentication.
const RoleHeader = "X-POS-Role"

const roleContextKey = "posRole"

// Role is a POS operator role.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleAdmin   Role = "admin"
)

// ParseRole reads a role case-insensitively.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleCashier:
		return RoleCashier, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// RequireRole aborts with 403 unless the role header names one of allowed.
func RequireRole(allowed ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := ParseRole(c.GetHeader(RoleHeader))
		if !ok {
			respondProblem(c, apierrors.ErrForbidden.WithDetail(fmt.Sprintf("%s header must be cashier or admin", RoleHeader)))
			c.Abort()
			return
		}
		for _, r := range allowed {
			if role == r {
				c.Set(roleContextKey, role)
				c.Next()
				return
			}
		}
		respondProblem(c, apierrors.ErrForbidden.WithDetail(fmt.Sprintf("role %s may not access this resource", role)))
		c.Abort()
	}
}
