package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"github.com/gotodo/todo-service/pkg/logger"
)

// PrincipalKey is the gin context key holding the verified Principal.
const PrincipalKey = "principal"

// Principal is the identity proven by a bearer token. It lives for one request.
type Principal struct {
	UserID   string
	Username string
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Principal, error)
}

type principalCtxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext returns the principal stored by AuthMiddleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(Principal)
	return p, ok && p.UserID != ""
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier.
// Every failure answers 401 and stops the chain; the cause is only logged.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer") {
			abortWith(c, apperrors.ErrNoToken)
			return
		}
		// Expect 'Bearer <token>'
		fields := strings.Fields(auth)
		if len(fields) != 2 || fields[0] != "Bearer" {
			abortWith(c, apperrors.ErrTokenFailed)
			return
		}

		p, err := ver.Verify(c.Request.Context(), fields[1])
		if err != nil {
			logger.Debugf("auth: token rejected for %s %s: %v", c.Request.Method, c.FullPath(), err)
			abortWith(c, apperrors.ErrTokenFailed)
			return
		}

		c.Set(PrincipalKey, p)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func abortWith(c *gin.Context, e *apperrors.Error) {
	c.AbortWithStatusJSON(e.Code.HTTPStatus(), e.Body())
}
