// Package account serves the views that need a signed-in visitor: checkout,
// the account dashboard and the admin dashboard.
package account

import (
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/auth"
	"github.com/Keerthudarshu/petandco/internal/pkg/response"
	"github.com/Keerthudarshu/petandco/internal/visitor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CheckoutMessage = "Please sign in to continue with checkout"
	AccountMessage  = "Please sign in to access your account dashboard"
)

type VisitorResolver func(c *gin.Context) (*visitor.Visitor, bool)

// StatsSource reports live visitor figures for the admin dashboard.
type StatsSource interface {
	Stats() visitor.Stats
}

type Handler struct {
	resolve VisitorResolver
	stats   StatsSource
	logger  *zap.Logger
}

func NewHandler(resolve VisitorResolver, stats StatsSource, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("account.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("account.handler")
	}
	return &Handler{resolve: resolve, stats: stats, logger: l}
}

// profile returns the signed-in visitor. The gate already ran, so a
// missing session here means it was signed out in between.
func (h *Handler) profile(c *gin.Context) (*visitor.Visitor, ProfileResponse, bool) {
	v, ok := h.resolve(c)
	if !ok {
		h.logger.Error("no visitor for request", zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "VISITOR_MISSING", "Visitor could not be resolved", nil)
		return nil, ProfileResponse{}, false
	}
	sess, ok := v.Session.Current()
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Session expired", nil)
		return nil, ProfileResponse{}, false
	}
	return v, toProfile(sess), true
}

func toProfile(s auth.Session) ProfileResponse {
	return ProfileResponse{ID: s.UserID, Name: s.Name, Email: s.Email, Role: string(s.Role)}
}

// GET /checkout
func (h *Handler) Checkout(c *gin.Context) {
	v, profile, ok := h.profile(c)
	if !ok {
		return
	}

	snap := v.Cart.Snapshot()
	pending := v.Cart.PendingSync()
	response.Success(c, http.StatusOK, CheckoutResponse{
		Customer:    profile,
		ItemCount:   snap.Count,
		Subtotal:    snap.Subtotal,
		PendingSync: pending,
		Ready:       snap.Count > 0 && pending == 0,
	}, nil)
}

// GET /account
func (h *Handler) Dashboard(c *gin.Context) {
	v, profile, ok := h.profile(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, AccountResponse{
		Profile:       profile,
		CartCount:     v.Cart.CartItemCount(),
		WishlistCount: len(v.Cart.Wishlist()),
	}, nil)
}

// GET /admin/dashboard
func (h *Handler) AdminDashboard(c *gin.Context) {
	response.Success(c, http.StatusOK, h.stats.Stats(), nil)
}
