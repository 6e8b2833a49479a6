package auth

import (
	"context"
	"net/http"
	"strings"

	autherrors "github.com/Keerthudarshu/petandco/internal/auth/errors"
	"github.com/Keerthudarshu/petandco/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartBinder is the visitor's cart as seen by sign-in and sign-out.
type CartBinder interface {
	Attach(ctx context.Context) error
	Detach()
}

// Scope is what a request acts on: the visitor's session and cart.
type Scope struct {
	Session *Store
	Cart    CartBinder
}

type ScopeResolver func(c *gin.Context) (Scope, bool)

type Handler struct {
	resolve ScopeResolver
	logger  *zap.Logger
}

func NewHandler(resolve ScopeResolver, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{resolve: resolve, logger: l}
}

func (h *Handler) scope(c *gin.Context) (Scope, bool) {
	sc, ok := h.resolve(c)
	if !ok || sc.Session == nil {
		h.logger.Error("no visitor scope on request", zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "VISITOR_MISSING", "Visitor could not be resolved", nil)
		return Scope{}, false
	}
	return sc, true
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", err.Error())
		return
	}

	sc, ok := h.scope(c)
	if !ok {
		return
	}

	// Switching accounts ends the previous user's session first, so its
	// cart is not written with the new user's token.
	if prev, ok := sc.Session.Current(); ok && !strings.EqualFold(prev.Email, strings.TrimSpace(req.Email)) {
		h.logger.Info("login replaces signed-in user", zap.String("user_id", prev.UserID))
		h.endSession(c.Request.Context(), sc)
	}

	sess, err := sc.Session.SignIn(c.Request.Context(), Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger.Warn("http login failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, err)
		return
	}

	if sc.Cart != nil {
		if err := sc.Cart.Attach(c.Request.Context()); err != nil {
			// The merge stays pending and is retried in the background.
			h.logger.Warn("cart attach after login failed", zap.String("user_id", sess.UserID), zap.Error(err))
		}
	}

	response.Success(c, http.StatusOK, toAuthResponse(sess, sc.Session.IsAdmin()), nil)
}

func (h *Handler) Me(c *gin.Context) {
	sc, ok := h.scope(c)
	if !ok {
		return
	}

	sess, ok := sc.Session.Current()
	if !ok {
		response.FromError(c, autherrors.ErrSessionRequired)
		return
	}
	response.Success(c, http.StatusOK, toAuthResponse(sess, sc.Session.IsAdmin()), nil)
}

func (h *Handler) Logout(c *gin.Context) {
	sc, ok := h.scope(c)
	if !ok {
		return
	}

	h.endSession(c.Request.Context(), sc)

	response.Success(c, http.StatusOK, "Logout success.", nil)
}

func (h *Handler) endSession(ctx context.Context, sc Scope) {
	if sc.Cart != nil {
		sc.Cart.Detach()
	}
	sc.Session.SignOut(ctx)
}
