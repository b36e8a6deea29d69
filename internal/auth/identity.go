package auth

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const ctxIdentity = "identity"

// Identity is the authenticated caller as the token verifier reported it.
// Services take a *Identity parameter explicitly; nil means unauthenticated.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
}

// IdentityFrom extracts the caller identity set by RequireUser/OptionalUser.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	if !ok || id == nil || id.UID == "" {
		return nil, false
	}
	return id, true
}

// SetIdentity stores an identity in the request context; exported for tests
// that bypass token verification.
func SetIdentity(c *gin.Context, id *Identity) {
	c.Set(ctxIdentity, id)
}

// SetIdentityFromToken maps a verified Firebase ID token onto an Identity.
func SetIdentityFromToken(c *gin.Context, token *fbauth.Token) {
	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	SetIdentity(c, id)
}
