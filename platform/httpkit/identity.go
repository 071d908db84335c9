package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the staff member AuthRequired resolved from the bearer token.
type Identity struct {
	userID uuid.UUID
	roles  []string
}

func (i *Identity) UserID() uuid.UUID { return i.userID }

// HasRole reports whether the token granted role. The casting handlers use
// it to pick the admin transition table.
func (i *Identity) HasRole(role string) bool {
	return slices.Contains(i.roles, role)
}

// GetIdentity returns nil when AuthRequired did not run or found no user.
func GetIdentity(c *gin.Context) *Identity {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return nil
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return nil
	}
	id := &Identity{userID: uid}
	if roles, ok := c.Get(ContextRolesKey); ok {
		id.roles, _ = roles.([]string)
	}
	return id
}

// MustGetIdentity aborts with 401 and returns nil when no user is present.
func MustGetIdentity(c *gin.Context) *Identity {
	id := GetIdentity(c)
	if id == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id
}
