package visitor

import (
	"net/http"
	"time"

	"github.com/Keerthudarshu/petandco/internal/auth"
	"github.com/Keerthudarshu/petandco/internal/cart"
	"github.com/Keerthudarshu/petandco/internal/middleware"
	"github.com/Keerthudarshu/petandco/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CookieName = "visitor_id"
	contextKey = "visitor"
)

type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// Middleware resolves the visitor from its cookie, issuing a new id when the
// cookie is missing or not a uuid, and stores it on the gin context.
func Middleware(reg *Registry, opts CookieOptions, logger ...*zap.Logger) gin.HandlerFunc {
	l := zap.L().Named("visitor.middleware")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("visitor.middleware")
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 365 * 24 * time.Hour
	}

	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, int(opts.MaxAge.Seconds()), "/", "", opts.Secure, true)

		v, err := reg.Get(c.Request.Context(), id)
		if err != nil {
			l.Error("resolve visitor failed", zap.String("visitor_id", id), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "VISITOR_MISSING", "Visitor could not be resolved", nil)
			c.Abort()
			return
		}

		c.Set(contextKey, v)
		c.Next()
	}
}

func FromContext(c *gin.Context) (*Visitor, bool) {
	raw, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	v, ok := raw.(*Visitor)
	return v, ok && v != nil
}

// CartOf satisfies cart.StoreResolver.
func CartOf(c *gin.Context) (*cart.Store, bool) {
	v, ok := FromContext(c)
	if !ok {
		return nil, false
	}
	return v.Cart, true
}

// ScopeOf satisfies auth.ScopeResolver.
func ScopeOf(c *gin.Context) (auth.Scope, bool) {
	v, ok := FromContext(c)
	if !ok {
		return auth.Scope{}, false
	}
	return auth.Scope{Session: v.Session, Cart: v.Cart}, true
}

// GateOf satisfies middleware.GateResolver.
func GateOf(c *gin.Context) (middleware.Gatekeeper, bool) {
	v, ok := FromContext(c)
	if !ok {
		return nil, false
	}
	return v.Session, true
}

var (
	_ cart.StoreResolver      = CartOf
	_ auth.ScopeResolver      = ScopeOf
	_ middleware.GateResolver = GateOf
)
