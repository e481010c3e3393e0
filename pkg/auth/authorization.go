package auth

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"

	"github.com/gin-gonic/gin"
)

// Identity is the resolved caller. Everything the engine knows about a user
// comes from the verified ID token; services never touch raw tokens.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Avatar      string
	Premium     bool
	IsAI        bool
}

func AuthMiddleware(firebaseApp *firebase.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			c.Abort()
			return
		}
		idToken := authHeader[len("Bearer "):]

		ctx := context.Background()
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initialize Firebase Auth"})
			c.Abort()
			return
		}

		token, err := authClient.VerifyIDToken(ctx, idToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ID token"})
			c.Abort()
			return
		}

		// Attach the resolved identity to the context
		c.Set("identity", identityFromToken(token))

		c.Next()
	}
}

// IdentityFrom returns the identity attached by AuthMiddleware. Panics if the
// middleware did not run, which is a wiring bug.
func IdentityFrom(c *gin.Context) Identity {
	return c.MustGet("identity").(Identity)
}

func identityFromToken(token *fbauth.Token) Identity {
	identity := Identity{UID: token.UID}
	if v, ok := token.Claims["email"].(string); ok {
		identity.Email = v
	}
	if v, ok := token.Claims["name"].(string); ok {
		identity.DisplayName = v
	}
	if v, ok := token.Claims["picture"].(string); ok {
		identity.Avatar = v
	}
	if v, ok := token.Claims["subscriptionTier"].(string); ok {
		identity.Premium = v == "premium"
	}
	if v, ok := token.Claims["bot"].(bool); ok {
		identity.IsAI = v
	}
	return identity
}
