package middleware

import (
	"net/http"
	"net/url"
	"strings"

	autherrors "github.com/Keerthudarshu/petandco/internal/auth/errors"
	"github.com/Keerthudarshu/petandco/internal/pkg/apperror"
	"github.com/Keerthudarshu/petandco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	UserLoginPath  = "/user-login"
	AdminLoginPath = "/admin-login"

	AdminMessage = "Please sign in with an administrator account"
)

// Gatekeeper is the part of a visitor's session a protected view needs.
type Gatekeeper interface {
	Authenticated() bool
	IsAdmin() bool
}

type GateResolver func(c *gin.Context) (Gatekeeper, bool)

// Decision is the outcome of a protected-view check: allow, or send the
// visitor to a login view with a message.
type Decision struct {
	Allow      bool
	RedirectTo string
	Message    string
	Err        *apperror.AppError
}

func DecideSession(g Gatekeeper, message string) Decision {
	if g != nil && g.Authenticated() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: UserLoginPath, Message: message, Err: autherrors.ErrSessionRequired}
}

func DecideAdmin(g Gatekeeper) Decision {
	if g != nil && g.IsAdmin() {
		return Decision{Allow: true}
	}
	return Decision{RedirectTo: AdminLoginPath, Message: AdminMessage, Err: autherrors.ErrAdminRequired}
}

// RequireSession lets signed-in visitors through; others are redirected to
// the user login view with message.
func RequireSession(resolve GateResolver, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, _ := resolve(c)
		enforce(c, DecideSession(g, message))
	}
}

func RequireAdmin(resolve GateResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		g, _ := resolve(c)
		enforce(c, DecideAdmin(g))
	}
}

func enforce(c *gin.Context, d Decision) {
	if d.Allow {
		c.Next()
		return
	}

	// Browsers navigating to the view get a real redirect; API clients get
	// the same decision as JSON.
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		q := url.Values{}
		q.Set("message", d.Message)
		q.Set("redirect", c.Request.URL.Path)
		c.Redirect(http.StatusFound, d.RedirectTo+"?"+q.Encode())
		c.Abort()
		return
	}

	response.Error(c, d.Err.HTTPStatus, d.Err.Code, d.Message, gin.H{
		"redirectTo": d.RedirectTo,
		"from":       c.Request.URL.Path,
	})
	c.Abort()
}
